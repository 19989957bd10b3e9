// Package language holds the supported answer languages and the intro
// message shown before language selection.
package language

import (
	"os"
	"sort"
)

// Option is one selectable answer language with its model instruction.
type Option struct {
	Name        string
	Code        string
	Instruction string
}

var options = map[string]Option{
	"1": {Name: "English", Code: "en", Instruction: "Respond in clear, simple English."},
	"2": {Name: "Hausa", Code: "ha", Instruction: "Respond in Hausa, using clear and simple language."},
	"3": {Name: "Yoruba", Code: "yo", Instruction: "Respond in Yoruba, using clear and simple language."},
	"4": {Name: "Igbo", Code: "ig", Instruction: "Respond in Igbo, using clear and simple language."},
}

// Lookup returns the option for a menu choice.
func Lookup(choice string) (Option, bool) {
	opt, ok := options[choice]
	return opt, ok
}

// Choices returns the menu keys in order.
func Choices() []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const fallbackIntro = `Welcome to HealthPaddie
Your trusted companion for verified health information.

1 - English
2 - Hausa
3 - Yoruba
4 - Igbo
`

// Intro loads the intro message from path, falling back to the built-in
// text when the file is missing.
func Intro(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallbackIntro
	}
	return string(data)
}
