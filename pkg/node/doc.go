// Package node defines the adapter between a foreign AST backend and the
// rule engine.
//
// A backend implements Foreign for each node it produces. Wrap turns a
// Foreign tree into Node adapters, which expose only what rules are allowed
// to use: identity, location, parent/child navigation, metric lookup and
// suppression annotations.
//
//	root := node.Wrap(unit)
//	node.Walk(root, func(n node.Node) bool {
//		ruleSet.Apply(n)
//		return true
//	})
package node
