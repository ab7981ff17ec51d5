// Package rules imports every built-in rule package so their init()
// functions register with rule.DefaultRegistry.
package rules

import (
	_ "github.com/leapstack-labs/leapmd/pkg/rules/codesize"
	_ "github.com/leapstack-labs/leapmd/pkg/rules/design"
	_ "github.com/leapstack-labs/leapmd/pkg/rules/expression"
	_ "github.com/leapstack-labs/leapmd/pkg/rules/naming"
)
