// Package ruleset resolves rule-set XML files into RuleSets and dispatches
// nodes to the rules they contain.
//
// A rule-set spec is a comma separated list of bundled identifiers
// ("codesize", "naming") or file paths. Each file may reference other
// rule-sets, reference single rules from them with overrides, or declare
// rules inline by registry class:
//
//	<ruleset name="project">
//	    <rule ref="rulesets/codesize.xml">
//	        <exclude name="NPathComplexity"/>
//	    </rule>
//	    <rule ref="rulesets/naming.xml/ShortMethodName">
//	        <priority>1</priority>
//	    </rule>
//	    <rule name="NoFoo" class="expression.Expression" message="{0} is a foo">
//	        <properties>
//	            <property name="expression" value="name == 'foo'"/>
//	        </properties>
//	    </rule>
//	</ruleset>
package ruleset
