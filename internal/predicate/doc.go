// Package predicate compiles row filter conditions.
//
// Conditions are JavaScript expressions run by goja against one raw row at a
// time, for example:
//
//	State == "Utah" && row["Dedicated Year"] > "1990"
package predicate
