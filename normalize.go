package evds

import "strings"

// asciiFoldRules is the fixed substitution table applied to Turkish display
// text before it is stored in the catalog. Case-sensitive, one rune per
// rule. The final rule maps U+0107 (c with acute) to "c"; the sound is
// already covered by the first rule, but the mapping is kept so folded
// output stays byte-identical with the original client's.
var asciiFoldRules = [...][2]string{
	{"ç", "c"}, // ç
	{"ğ", "g"}, // ğ
	{"ı", "i"}, // ı
	{"ö", "o"}, // ö
	{"ş", "s"}, // ş
	{"ü", "u"}, // ü
	{"Ğ", "G"}, // Ğ
	{"İ", "I"}, // İ
	{"Ş", "S"}, // Ş
	{"ć", "c"}, // ć
}

var asciiFolder = newFolder()

func newFolder() *strings.Replacer {
	pairs := make([]string, 0, 2*len(asciiFoldRules))
	for _, rule := range asciiFoldRules {
		pairs = append(pairs, rule[0], rule[1])
	}
	return strings.NewReplacer(pairs...)
}

// ASCIIFold replaces the Turkish letters of s with their closest ASCII
// equivalents. It is total and idempotent.
func ASCIIFold(s string) string {
	return asciiFolder.Replace(s)
}
