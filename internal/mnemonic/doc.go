// Package mnemonic reformats opcode tables into Go map-entry literals.
//
// An input table holds one record per line, fields separated by runs of
// whitespace:
//
//	0x00 "brk" 2 ...
//	0xea "nop" 1 ...
//
// Token 0 is the opcode, token 1 the mnemonic and token 2 the instruction
// length; anything after token 2 is ignored. Each record becomes
//
//	"brk": Opcode{"brk", 2, X, 0x00, false},
//
// where X and false are fixed placeholders the table author fills in by hand.
package mnemonic
