package mnemonic

import (
	"encoding/json"
	"fmt"
)

const (
	// DefaultTypeName is the composite literal type of every entry.
	DefaultTypeName = "Opcode"
	// OperandPlaceholder stands in for the operand count.
	OperandPlaceholder = "X"
	// SizeFlagLiteral is the register-size flag every entry starts with.
	SizeFlagLiteral = "false"
)

// Template renders records as map entries:
//
//	<name>: <TypeName>{<name>, <value>, <Operands>, <opcode>, <SizeFlag>},
type Template struct {
	TypeName string
	Operands string
	SizeFlag string
}

// DefaultTemplate returns the template with the fixed placeholders.
func DefaultTemplate() Template {
	return Template{
		TypeName: DefaultTypeName,
		Operands: OperandPlaceholder,
		SizeFlag: SizeFlagLiteral,
	}
}

// WithDefaults fills empty fields from DefaultTemplate.
func (t Template) WithDefaults() Template {
	d := DefaultTemplate()
	if t.TypeName == "" {
		t.TypeName = d.TypeName
	}
	if t.Operands == "" {
		t.Operands = d.Operands
	}
	if t.SizeFlag == "" {
		t.SizeFlag = d.SizeFlag
	}
	return t
}

// Format renders r. r must be Valid.
func (t Template) Format(r Record) string {
	return fmt.Sprintf("%s: %s{%s, %s, %s, %s, %s},",
		r.Name(), t.TypeName, r.Name(), r.Value(), t.Operands, r.Opcode(), t.SizeFlag)
}

type jsonRecord struct {
	Line   uint32 `json:"line"`
	Opcode string `json:"opcode"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

func formatJSON(r Record) (string, error) {
	data, err := json.Marshal(jsonRecord{
		Line:   r.Line,
		Opcode: r.Opcode(),
		Name:   r.Name(),
		Value:  r.Value(),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
