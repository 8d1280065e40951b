package uci

import (
	"fmt"
	"strconv"
	"strings"
)

// OptionType enumerates the UCI option kinds.
type OptionType string

const (
	OptionCheck  OptionType = "check"
	OptionSpin   OptionType = "spin"
	OptionCombo  OptionType = "combo"
	OptionString OptionType = "string"
	OptionButton OptionType = "button"
)

// Option is one entry of the option registry.
type Option struct {
	Name     string
	Type     OptionType
	Default  string
	Min, Max int
	Vars     []string

	value    string
	onChange func(string)
}

// Options is the engine's option registry, preserving registration order
// for the "uci" listing.
type Options struct {
	order []string
	byKey map[string]*Option
}

// NewOptions creates an empty registry.
func NewOptions() *Options {
	return &Options{byKey: make(map[string]*Option)}
}

func optionKey(name string) string {
	return strings.ToLower(name)
}

// Add registers an option; onChange fires whenever the value is set.
func (o *Options) Add(opt Option, onChange func(string)) {
	opt.value = opt.Default
	opt.onChange = onChange
	o.order = append(o.order, opt.Name)
	o.byKey[optionKey(opt.Name)] = &opt
}

// Set updates an option by (case-insensitive) name.
func (o *Options) Set(name, value string) error {
	opt, ok := o.byKey[optionKey(name)]
	if !ok {
		return fmt.Errorf("no such option: %s", name)
	}
	switch opt.Type {
	case OptionCheck:
		if value != "true" && value != "false" {
			return fmt.Errorf("option %s wants true/false, got %q", opt.Name, value)
		}
	case OptionSpin:
		n, err := strconv.Atoi(value)
		if err != nil || n < opt.Min || n > opt.Max {
			return fmt.Errorf("option %s wants %d..%d, got %q", opt.Name, opt.Min, opt.Max, value)
		}
	case OptionButton:
		value = ""
	}
	opt.value = value
	if opt.onChange != nil {
		opt.onChange(value)
	}
	return nil
}

// Get returns an option's current value.
func (o *Options) Get(name string) string {
	if opt, ok := o.byKey[optionKey(name)]; ok {
		return opt.value
	}
	return ""
}

// GetBool returns a check option as a bool.
func (o *Options) GetBool(name string) bool {
	return o.Get(name) == "true"
}

// GetInt returns a spin option as an int.
func (o *Options) GetInt(name string) int {
	n, _ := strconv.Atoi(o.Get(name))
	return n
}

// Print writes the registry in "option name ..." protocol form.
func (o *Options) Print(out func(string)) {
	for _, name := range o.order {
		opt := o.byKey[optionKey(name)]
		line := fmt.Sprintf("option name %s type %s", opt.Name, opt.Type)
		switch opt.Type {
		case OptionSpin:
			line += fmt.Sprintf(" default %s min %d max %d", opt.Default, opt.Min, opt.Max)
		case OptionCheck, OptionString:
			line += fmt.Sprintf(" default %s", opt.Default)
		case OptionCombo:
			line += fmt.Sprintf(" default %s", opt.Default)
			for _, v := range opt.Vars {
				line += " var " + v
			}
		}
		out(line)
	}
}
