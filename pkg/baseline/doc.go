// Package baseline records known violations so a run can hide them
// (Validate) or hide everything new (Update).
//
// A baseline file looks like:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<leapmd-baseline>
//	  <violation rule="codesize.CyclomaticComplexity" file="src/Foo.php" method="bar"/>
//	  <violation rule="expression.Expression/NoManagers" file="src/Foo.php" method="App\Foo"/>
//	</leapmd-baseline>
//
// The rule attribute is the rule's registry class, so renaming a rule in a
// rule-set does not invalidate the baseline. Configurable classes such as
// expression.Expression add the rule name. The method attribute holds the
// method or function name, or the qualified type name for type-level
// violations; an entry without it covers the whole file. Files are stored
// relative to the baseline file's directory.
package baseline
