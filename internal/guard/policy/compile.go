package policy

import (
	"regexp"

	"github.com/reflaxe-ocaml/guards/internal/rules"
)

func compile(name, pattern string) (rules.Rule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return rules.Rule{}, err
	}
	return rules.Rule{Name: name, Pattern: re}, nil
}
