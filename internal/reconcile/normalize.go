package reconcile

import "strings"

// nameSubstitutions are applied in order.
var nameSubstitutions = [][2]string{
	{" Temple", ""},
	{"Kinshasa Democratic Republic of the Congo", "Kinshasa Democratic Republic of Congo"},
}

// NormalizeName applies the fixed name substitutions used as entity keys.
func NormalizeName(name string) string {
	for _, sub := range nameSubstitutions {
		name = strings.ReplaceAll(name, sub[0], sub[1])
	}
	return name
}
