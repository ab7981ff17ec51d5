package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapmd/pkg/rule"
)

// ClassLoader loads an external rule source file that registers rule
// classes on reg. The plugin package provides the Starlark implementation.
type ClassLoader interface {
	LoadFile(path string, reg *rule.Registry) error
}

// FactoryConfig configures a Factory. Zero values select defaults.
type FactoryConfig struct {
	// Registry supplies rule constructors. Defaults to rule.DefaultRegistry.
	Registry *rule.Registry

	// Root holds the bundled rule-sets. Defaults to Bundled().
	Root fs.FS

	// SearchPath is extended by php-includepath elements. A fresh one is
	// created when nil.
	SearchPath *SearchPath

	// MinimumPriority is the numerically largest admitted priority.
	// Defaults to rule.LowestPriority.
	MinimumPriority rule.Priority

	// MaximumPriority is the numerically smallest admitted priority.
	// Defaults to rule.HighestPriority.
	MaximumPriority rule.Priority

	Strict bool

	// ClassLoader loads the file attribute of inline rules whose class is
	// not registered. Optional.
	ClassLoader ClassLoader

	Logger *slog.Logger
}

// Factory resolves rule-set specs into RuleSets.
type Factory struct {
	registry   *rule.Registry
	root       fs.FS
	searchPath *SearchPath
	minimum    rule.Priority
	maximum    rule.Priority
	strict     bool
	loader     ClassLoader
	logger     *slog.Logger
}

// NewFactory creates a factory.
func NewFactory(cfg FactoryConfig) *Factory {
	f := &Factory{
		registry:   cfg.Registry,
		root:       cfg.Root,
		searchPath: cfg.SearchPath,
		minimum:    cfg.MinimumPriority,
		maximum:    cfg.MaximumPriority,
		strict:     cfg.Strict,
		loader:     cfg.ClassLoader,
		logger:     cfg.Logger,
	}
	if f.registry == nil {
		f.registry = rule.DefaultRegistry
	}
	if f.root == nil {
		f.root = Bundled()
	}
	if f.searchPath == nil {
		f.searchPath = NewSearchPath()
	}
	if f.minimum == 0 {
		f.minimum = rule.LowestPriority
	}
	if f.maximum == 0 {
		f.maximum = rule.HighestPriority
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	return f
}

// SearchPath returns the factory's search path.
func (f *Factory) SearchPath() *SearchPath { return f.searchPath }

// Registry returns the registry rules are constructed from.
func (f *Factory) Registry() *rule.Registry { return f.registry }

// Available lists the bundled rule-set identifiers.
func (f *Factory) Available() []string {
	return available(f.root)
}

// CreateRuleSets resolves every comma separated token of spec.
func (f *Factory) CreateRuleSets(spec string) ([]*RuleSet, error) {
	var out []*RuleSet
	for _, token := range splitSpec(spec) {
		rs, err := f.CreateSingleRuleSet(token)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}

// CreateSingleRuleSet resolves one identifier or path.
func (f *Factory) CreateSingleRuleSet(token string) (*RuleSet, error) {
	src, err := f.locate(token)
	if err != nil {
		return nil, err
	}
	r := &resolution{factory: f}
	return r.resolve(src, f.minimum, f.maximum)
}

// IgnorePatterns returns the exclude-pattern entries of the first token
// in spec. Later tokens are not consulted.
func (f *Factory) IgnorePatterns(spec string) ([]string, error) {
	tokens := splitSpec(spec)
	if len(tokens) == 0 {
		return nil, nil
	}

	src, err := f.locate(tokens[0])
	if err != nil {
		return nil, err
	}
	root, err := src.parse()
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, e := range root.all("exclude-pattern") {
		if p := e.text(); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

func splitSpec(spec string) []string {
	var out []string
	for _, token := range strings.Split(spec, ",") {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}

// source is a resolved rule-set file, either on disk or in the bundle.
type source struct {
	fsys fs.FS // nil for the OS file system
	name string
}

func (s source) String() string {
	if s.fsys != nil {
		return "bundled:" + s.name
	}
	return s.name
}

// dir is the OS directory relative references resolve against. Bundled
// files have none.
func (s source) dir() string {
	if s.fsys != nil {
		return ""
	}
	return filepath.Dir(s.name)
}

func (s source) read() ([]byte, error) {
	if s.fsys != nil {
		return fs.ReadFile(s.fsys, s.name)
	}
	return os.ReadFile(s.name)
}

func (s source) parse() (*element, error) {
	data, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read rule-set %s: %w", s, err)
	}
	root, err := parseDocument(data)
	if err != nil {
		return nil, &MalformedRuleSetError{File: s.String(), Err: err}
	}
	return root, nil
}

// locate maps a token to the first existing candidate file.
func (f *Factory) locate(token string) (source, error) {
	var tried []string

	osCandidate := func(p string) (source, bool) {
		tried = append(tried, p)
		if !isRegularFile(p) {
			return source{}, false
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		return source{name: p}, true
	}
	rootCandidate := func(p string) (source, bool) {
		p = path.Clean(filepath.ToSlash(p))
		tried = append(tried, "bundled:"+p)
		if !fs.ValidPath(p) {
			return source{}, false
		}
		info, err := fs.Stat(f.root, p)
		if err != nil || !info.Mode().IsRegular() {
			return source{}, false
		}
		return source{fsys: f.root, name: p}, true
	}

	if src, ok := osCandidate(token); ok {
		return src, nil
	}
	if src, ok := rootCandidate(token); ok {
		return src, nil
	}
	if src, ok := rootCandidate(path.Join("rulesets", token+".xml")); ok {
		return src, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		if src, ok := osCandidate(filepath.Join(cwd, "rulesets", token+".xml")); ok {
			return src, nil
		}
	}
	for _, dir := range f.searchPath.Dirs() {
		if src, ok := osCandidate(filepath.Join(dir, token)); ok {
			return src, nil
		}
		if src, ok := osCandidate(filepath.Join(dir, token+".xml")); ok {
			return src, nil
		}
	}

	f.logger.Debug("rule-set not found", "token", token, "tried", tried)
	return source{}, &RuleSetNotFoundError{Token: token, Tried: tried}
}

// resolution tracks the chain of files being resolved by one top-level
// CreateSingleRuleSet call.
type resolution struct {
	factory *Factory
	stack   []string
}

func (r *resolution) resolve(src source, minimum, maximum rule.Priority) (*RuleSet, error) {
	key := src.String()
	for _, s := range r.stack {
		if s == key {
			chain := append(append([]string(nil), r.stack...), key)
			return nil, &CircularReferenceError{Chain: chain}
		}
	}
	r.stack = append(r.stack, key)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	root, err := src.parse()
	if err != nil {
		return nil, err
	}

	f := r.factory
	f.logger.Debug("resolving rule-set", "file", key)

	rs := New(root.attr("name"))
	rs.FileName = key
	rs.SetStrict(f.strict)

	for i := range root.Children {
		child := &root.Children[i]
		switch child.name() {
		case "description":
			rs.Description = child.text()
		case "php-includepath":
			r.addIncludePath(src, child.text())
		case "rule":
			if err := r.parseRule(rs, src, child, minimum, maximum); err != nil {
				return nil, err
			}
		}
	}
	return rs, nil
}

func (r *resolution) addIncludePath(src source, includePath string) {
	if includePath == "" {
		return
	}
	if dir := src.dir(); dir != "" && !filepath.IsAbs(includePath) {
		if candidate := filepath.Join(dir, includePath); isDir(candidate) {
			includePath = candidate
		}
	}
	r.factory.searchPath.Append(includePath)
	r.factory.logger.Debug("search path extended", "dir", includePath)
}

func (r *resolution) parseRule(rs *RuleSet, src source, e *element, minimum, maximum rule.Priority) error {
	ref := e.attr("ref")
	switch {
	case ref == "":
		return r.parseInlineRule(rs, src, e, minimum, maximum)
	case strings.HasSuffix(ref, ".xml"):
		return r.parseRuleSetReference(rs, e, ref, minimum, maximum)
	default:
		return r.parseSingleRuleReference(rs, src, e, ref, minimum, maximum)
	}
}

func (r *resolution) parseRuleSetReference(rs *RuleSet, e *element, ref string, minimum, maximum rule.Priority) error {
	src, err := r.factory.locate(ref)
	if err != nil {
		return err
	}
	nested, err := r.resolve(src, minimum, maximum)
	if err != nil {
		return err
	}

	excluded := make(map[string]bool)
	for _, ex := range e.all("exclude") {
		excluded[ex.attr("name")] = true
	}
	for _, rl := range nested.Rules() {
		if excluded[rule.Name(rl)] {
			continue
		}
		rs.AddRule(rl)
	}
	return nil
}

func (r *resolution) parseInlineRule(rs *RuleSet, src source, e *element, minimum, maximum rule.Priority) error {
	class := e.attr("class")
	if err := r.ensureClass(src, class, e.attr("file")); err != nil {
		return err
	}

	rl, err := r.factory.registry.New(class)
	if err != nil {
		return &RuleClassNotFoundError{Class: class}
	}

	def := rl.Definition()
	def.Name = e.attr("name")
	def.Message = e.attr("message")
	def.ExternalInfoURL = e.attr("externalInfoUrl")
	def.Since = e.attr("since")
	def.RuleSetName = rs.Name

	if err := applyRuleChildren(def, e, src, false); err != nil {
		return err
	}
	if admitted(def.Priority, minimum, maximum) {
		rs.AddRule(rl)
	}
	return nil
}

// ensureClass makes class available in the registry, loading its file
// through the ClassLoader when needed.
func (r *resolution) ensureClass(src source, class, file string) error {
	f := r.factory
	if f.registry.Has(class) {
		return nil
	}
	if file == "" {
		return &RuleClassNotFoundError{Class: class}
	}

	resolved, ok := r.findClassFile(src, file)
	if !ok {
		return &RuleClassFileNotFoundError{Class: class, File: file, Err: fs.ErrNotExist}
	}
	if f.loader == nil {
		return &RuleClassNotFoundError{Class: class, File: resolved}
	}

	f.logger.Debug("loading rule class file", "class", class, "file", resolved)
	if err := f.loader.LoadFile(resolved, f.registry); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return &RuleClassFileNotFoundError{Class: class, File: resolved, Err: err}
		}
		return fmt.Errorf("failed to load rule class %q from %s: %w", class, resolved, err)
	}
	if !f.registry.Has(class) {
		return &RuleClassNotFoundError{Class: class, File: resolved}
	}
	return nil
}

// findClassFile tries file as given, then relative to the rule-set's
// directory, then on the search path.
func (r *resolution) findClassFile(src source, file string) (string, bool) {
	if isRegularFile(file) {
		return file, true
	}
	if dir := src.dir(); dir != "" && !filepath.IsAbs(file) {
		if candidate := filepath.Join(dir, file); isRegularFile(candidate) {
			return candidate, true
		}
	}
	return r.factory.searchPath.Find(file)
}

func (r *resolution) parseSingleRuleReference(rs *RuleSet, src source, e *element, ref string, minimum, maximum rule.Priority) error {
	file, name, err := splitRuleReference(ref)
	if err != nil {
		return &MalformedRuleSetError{File: src.String(), Err: err}
	}

	refSrc, err := r.factory.locate(file)
	if err != nil {
		return err
	}
	referenced, err := r.resolve(refSrc, rule.LowestPriority, rule.HighestPriority)
	if err != nil {
		return err
	}

	orig, ok := referenced.RuleByName(name)
	if !ok {
		return &RuleNotFoundError{RuleSet: refSrc.String(), Name: name}
	}
	rl, err := r.factory.registry.Copy(orig)
	if err != nil {
		return fmt.Errorf("failed to copy rule %s: %w", name, err)
	}

	def := rl.Definition()
	if v := e.attr("name"); v != "" {
		def.Name = v
	}
	if v := e.attr("message"); v != "" {
		def.Message = v
	}
	if v := e.attr("externalInfoUrl"); v != "" {
		def.ExternalInfoURL = v
	}

	if err := applyRuleChildren(def, e, src, true); err != nil {
		return err
	}
	if admitted(def.Priority, minimum, maximum) {
		rs.AddRule(rl)
	}
	return nil
}

// splitRuleReference splits "<file>.xml/<RuleName>". A reference without
// ".xml/" is split at its last slash.
func splitRuleReference(ref string) (string, string, error) {
	if i := strings.Index(ref, ".xml/"); i >= 0 {
		return ref[:i+len(".xml")], ref[i+len(".xml/"):], nil
	}
	if i := strings.LastIndex(ref, "/"); i > 0 && i < len(ref)-1 {
		return ref[:i], ref[i+1:], nil
	}
	return "", "", fmt.Errorf("invalid rule reference %q", ref)
}

// applyRuleChildren reads description, example, priority and properties.
// With replace set, a supplied examples or properties list replaces the
// existing one instead of extending it.
func applyRuleChildren(def *rule.Definition, e *element, src source, replace bool) error {
	var examples []string
	exampleSeen := false
	for i := range e.Children {
		child := &e.Children[i]
		switch child.name() {
		case "description":
			def.Description = child.text()
		case "example":
			exampleSeen = true
			examples = append(examples, child.text())
		case "priority":
			p, err := rule.ParsePriority(child.Text)
			if err != nil {
				return &MalformedRuleSetError{File: src.String(), Err: err}
			}
			def.Priority = p
		case "properties":
			props := parseProperties(child)
			if replace || def.Properties == nil {
				def.Properties = props
				continue
			}
			for k, v := range props {
				def.Properties[k] = v
			}
		}
	}
	if exampleSeen {
		if replace {
			def.Examples = examples
		} else {
			def.Examples = append(def.Examples, examples...)
		}
	}
	return nil
}

// parseProperties reads property name/value pairs. The value comes from
// the value attribute or a nested value element; pairs with an empty name
// or value are dropped.
func parseProperties(e *element) rule.Properties {
	props := make(rule.Properties)
	for _, p := range e.all("property") {
		name := strings.TrimSpace(p.attr("name"))
		value := strings.TrimSpace(p.attr("value"))
		if value == "" {
			if v := p.child("value"); v != nil {
				value = v.text()
			}
		}
		if name == "" || value == "" {
			continue
		}
		props[name] = value
	}
	return props
}

// admitted applies the priority window. MinimumPriority is the numerically
// largest and MaximumPriority the numerically smallest accepted value.
func admitted(p, minimum, maximum rule.Priority) bool {
	return p <= minimum && p >= maximum
}
