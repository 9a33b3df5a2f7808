package parser

var KEYWORDS = map[string]TokenType{
	"fn":       FUN,
	"let":      LET,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"contract": CONTRACT,
	"assert":   ASSERT,
	"require":  REQUIRE,
	"use":      USE,
	"struct":   STRUCT,
	"writes":   WRITES,
	"reads":    READS,
	"ext":      EXT,
	"mut":      MUT,
}
