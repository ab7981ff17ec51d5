// Package rule defines the contract between the engine and individual
// checks.
//
// A rule is a typed value implementing Rule. Its metadata lives in a
// Definition that the rule-set factory fills from XML; its capability set
// names the node kinds it receives. Rules report through the Context passed
// to Apply:
//
//	type tooLong struct{ rule.Base }
//
//	func (r *tooLong) Capabilities() node.Kind { return node.KindMethod }
//
//	func (r *tooLong) Apply(ctx *rule.Context, n node.Node) error {
//		limit := ctx.Properties().Int("minimum", 100)
//		if loc, _ := n.Metric("loc"); int(loc) >= limit {
//			ctx.AddViolation(n, n.Name(), strconv.Itoa(int(loc)))
//		}
//		return nil
//	}
//
// # Registration
//
// Rule types are looked up by class identifier in a Registry. Built-in
// rules register themselves on DefaultRegistry from init(); plugins
// register on a scoped clone before rule-sets are resolved:
//
//	func init() {
//		rule.MustRegister("codesize.ExcessiveMethodLength", func() rule.Rule { return &tooLong{} })
//	}
package rule
