package calculator

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// InputKind hints at how an input should be collected.
type InputKind string

const (
	KindCurrency InputKind = "currency"
	KindPercent  InputKind = "percent"
	KindNumber   InputKind = "number"
	KindChoice   InputKind = "choice"
	KindFlag     InputKind = "flag"
	KindMonth    InputKind = "month"
	KindRating   InputKind = "rating"
)

// Input describes one form input of a calculator.
type Input struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    InputKind `json:"kind"`
	Default string    `json:"default,omitempty"`
	Options []string  `json:"options,omitempty"`
	// After names a month input this one should not precede.
	After string `json:"after,omitempty"`
}

// decodeForm copies raw values onto a form struct. Keys match the json tags
// case-insensitively and unknown keys are ignored, so a partially filled or
// untidy form still decodes.
func decodeForm(values map[string]string, form interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           form,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// inputsOf reads the input descriptors from the struct tags of a form type.
func inputsOf(form interface{}) []Input {
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	inputs := make([]Input, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if key == "" || key == "-" {
			continue
		}
		input := Input{
			Key:     key,
			Label:   field.Tag.Get("label"),
			Kind:    InputKind(field.Tag.Get("kind")),
			Default: field.Tag.Get("default"),
			After:   field.Tag.Get("after"),
		}
		if input.Kind == "" {
			input.Kind = KindNumber
		}
		if options := field.Tag.Get("options"); options != "" {
			input.Options = strings.Split(options, "|")
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// definition adapts a typed form and derive function to the Calculator interface.
type definition[F any, M Result] struct {
	name        string
	title       string
	description string
	derive      func(F) M
}

func (d definition[F, M]) Name() string        { return d.name }
func (d definition[F, M]) Title() string       { return d.title }
func (d definition[F, M]) Description() string { return d.description }

func (d definition[F, M]) Inputs() []Input {
	var form F
	return inputsOf(form)
}

// Derive decodes values into the form and runs the derive function. Decoding
// problems leave the affected inputs blank, which parse to zero.
func (d definition[F, M]) Derive(values map[string]string) Result {
	var form F
	_ = decodeForm(values, &form)
	return d.derive(form)
}
