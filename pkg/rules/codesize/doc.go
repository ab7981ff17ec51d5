// Package codesize provides rules that flag methods and types which have
// grown too long or too complex.
//
// Rules in this package:
//   - codesize.CyclomaticComplexity: decision points per method (ccn2)
//   - codesize.NPathComplexity: acyclic execution paths (npath)
//   - codesize.ExcessiveMethodLength: lines of code per method (loc)
//   - codesize.ExcessiveClassLength: lines of code per type (loc)
//   - codesize.ExcessiveClassComplexity: weighted method count (wmc)
//   - codesize.TooManyMethods: non-accessor methods per type
package codesize
