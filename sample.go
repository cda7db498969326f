package scopeview

// samples holds the text a new editing session starts with.
var samples = map[string]string{
	"go": `package main

type Test struct {
	num       uint
	num2      uint
	secretStr string
}

func (t *Test) test() {
	t.num = 69
}

func shouldHaveLocal() {
	var local uint
	_ = local
}
`,
	"python": `class Test:
    num = 0
    num2 = 0
    secret_str = ""

    def test(self):
        self.num = 69

    def should_have_local(self):
        local = 0
`,
}

// SampleSource returns the starter text for a language, falling back to
// the Go sample.
func SampleSource(language string) string {
	if s, ok := samples[language]; ok {
		return s
	}
	return samples["go"]
}
