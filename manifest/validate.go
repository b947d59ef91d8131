package manifest

import (
	"strings"

	"github.com/NVIDIA/wlancore/internal/config"
)

// Validator runs a multi-pass walk against a ComponentDecl, using the
// field-length limits in cfg.
type Validator struct {
	fields fieldValidator
}

func NewValidator(cfg config.Manifest) *Validator {
	return &Validator{fields: newFieldValidator(cfg)}
}

func strp(s string) *string { return &s }

func capDeclName(kind CapabilityKind) string {
	switch kind {
	case CapProtocol:
		return "ProtocolDecl"
	case CapDirectory:
		return "DirectoryDecl"
	case CapStorage:
		return "StorageDecl"
	case CapRunner:
		return "RunnerDecl"
	case CapResolver:
		return "ResolverDecl"
	case CapService:
		return "ServiceDecl"
	default:
		return "CapabilityDecl"
	}
}

func useDeclName(kind CapabilityKind) string {
	switch kind {
	case CapProtocol:
		return "UseProtocolDecl"
	case CapDirectory:
		return "UseDirectoryDecl"
	case CapStorage:
		return "UseStorageDecl"
	case CapRunner:
		return "UseRunnerDecl"
	case CapEvent:
		return "UseEventStreamDecl"
	case CapService:
		return "UseServiceDecl"
	default:
		return "UseDecl"
	}
}

func exposeDeclName(kind CapabilityKind) string {
	switch kind {
	case CapProtocol:
		return "ExposeProtocolDecl"
	case CapDirectory:
		return "ExposeDirectoryDecl"
	case CapRunner:
		return "ExposeRunnerDecl"
	case CapResolver:
		return "ExposeResolverDecl"
	case CapService:
		return "ExposeServiceDecl"
	default:
		return "ExposeDecl"
	}
}

func offerDeclName(kind CapabilityKind) string {
	switch kind {
	case CapProtocol:
		return "OfferProtocolDecl"
	case CapDirectory:
		return "OfferDirectoryDecl"
	case CapStorage:
		return "OfferStorageDecl"
	case CapRunner:
		return "OfferRunnerDecl"
	case CapResolver:
		return "OfferResolverDecl"
	case CapEvent:
		return "OfferEventDecl"
	case CapService:
		return "OfferServiceDecl"
	default:
		return "OfferDecl"
	}
}

// nameSets accumulates the per-kind name tables built while visiting
// children/collections/capabilities, consulted by the reference checks
// over uses/exposes/offers/environments.
type nameSets struct {
	children     map[string]bool
	collections  map[string]bool
	capabilities map[string]bool
	environments map[string]bool
	storage      map[string]bool
	runners      map[string]bool
	resolvers    map[string]bool
}

func newNameSets() *nameSets {
	return &nameSets{
		children:     make(map[string]bool),
		collections:  make(map[string]bool),
		capabilities: make(map[string]bool),
		environments: make(map[string]bool),
		storage:      make(map[string]bool),
		runners:      make(map[string]bool),
		resolvers:    make(map[string]bool),
	}
}

// pathOverlaps reports whether two mount paths conflict: identical, or
// one is an ancestor directory of the other.
func pathOverlaps(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

// Validate implements the public validate(decl) contract: the full
// multi-pass walk over a ComponentDecl.
func (v *Validator) Validate(decl *ComponentDecl) error {
	var errs ErrorList
	sets := newNameSets()
	graph := newDependencyGraph()

	// pass 1: environment names
	for _, e := range decl.Environments {
		v.fields.checkName(strp(e.Name), "EnvironmentDecl", "name", &errs)
		if e.Name == "" {
			continue
		}
		if sets.environments[e.Name] {
			errs.add(errDuplicateField("EnvironmentDecl", "name", e.Name))
			continue
		}
		sets.environments[e.Name] = true
		graph.addNode(DependencyNode{NodeEnvironment, e.Name})
	}

	// pass 2: children, collections, capabilities
	v.visitChildren(decl, sets, graph, &errs)
	v.visitCollections(decl, sets, &errs)
	v.visitCapabilities(decl, sets, &errs)

	// pass 3: uses, exposes, offers
	v.visitUses(decl, sets, &errs)
	v.visitExposes(decl, sets, &errs)
	v.visitOffers(decl, sets, graph, &errs)

	// pass 4: environments revisited for runner/resolver registrations
	v.visitEnvironmentRegistrations(decl, sets, graph, &errs)

	// pass 5: topological sort / cycle detection over the strong-dependency graph
	errs = append(errs, graph.cycleErrors()...)

	return errs.AsResult()
}

func (v *Validator) visitChildren(decl *ComponentDecl, sets *nameSets, graph *dependencyGraph, errs *ErrorList) {
	for _, c := range decl.Children {
		v.fields.checkName(strp(c.Name), "ChildDecl", "name", errs)
		v.fields.checkURL(strp(c.URL), "ChildDecl", "url", errs)
		if c.Name != "" {
			if sets.children[c.Name] {
				errs.add(errDuplicateField("ChildDecl", "name", c.Name))
			} else {
				sets.children[c.Name] = true
				graph.addNode(DependencyNode{NodeChild, c.Name})
			}
		}
		if c.Environment == "" {
			continue
		}
		if !sets.environments[c.Environment] {
			errs.add(errInvalidEnvironment("ChildDecl", "environment", c.Environment))
			continue
		}
		if c.Name != "" {
			graph.addEdge(DependencyNode{NodeEnvironment, c.Environment}, DependencyNode{NodeChild, c.Name})
		}
	}
}

func (v *Validator) visitCollections(decl *ComponentDecl, sets *nameSets, errs *ErrorList) {
	for _, c := range decl.Collections {
		v.fields.checkName(strp(c.Name), "CollectionDecl", "name", errs)
		if c.Name != "" {
			if sets.collections[c.Name] {
				errs.add(errDuplicateField("CollectionDecl", "name", c.Name))
			} else {
				sets.collections[c.Name] = true
			}
		}
		if c.Environment != "" && !sets.environments[c.Environment] {
			errs.add(errInvalidEnvironment("CollectionDecl", "environment", c.Environment))
		}
	}
}

func (v *Validator) visitCapabilities(decl *ComponentDecl, sets *nameSets, errs *ErrorList) {
	for _, c := range decl.Capabilities {
		declType := capDeclName(c.Kind)
		v.fields.checkName(strp(c.Name), declType, "name", errs)
		if c.Name != "" {
			if sets.capabilities[c.Name] {
				errs.add(errDuplicateField(declType, "name", c.Name))
			} else {
				sets.capabilities[c.Name] = true
			}
		}
		switch c.Kind {
		case CapStorage:
			if c.Name != "" {
				sets.storage[c.Name] = true
			}
			v.fields.checkRelativePath(strp(c.SourcePath), declType, "source_path", errs)
		case CapRunner:
			v.fields.checkPath(strp(c.Path), declType, "path", errs)
			if c.Name != "" {
				sets.runners[c.Name] = true
			}
		case CapResolver:
			v.fields.checkPath(strp(c.Path), declType, "path", errs)
			if c.Name != "" {
				sets.resolvers[c.Name] = true
			}
		case CapProtocol, CapDirectory, CapService:
			v.fields.checkPath(strp(c.Path), declType, "path", errs)
		}
	}
}

type pathEntry struct {
	path     string
	kind     CapabilityKind
	declType string
}

func (v *Validator) visitUses(decl *ComponentDecl, sets *nameSets, errs *ErrorList) {
	var paths []pathEntry
	eventNames := make(map[string]bool)
	runnerCount := 0

	for _, u := range decl.Uses {
		declType := useDeclName(u.Kind)
		v.checkSourceRef(u.Source, declType, sets, errs)

		switch u.Kind {
		case CapEvent:
			v.fields.checkName(strp(u.Name), declType, "source_name", errs)
			if u.Name != "" {
				if eventNames[u.Name] {
					errs.add(errDuplicateField(declType, "source_name", u.Name))
				} else {
					eventNames[u.Name] = true
				}
			}
			continue
		case CapRunner:
			runnerCount++
			if runnerCount > 1 {
				errs.add(errMultipleRunnersSpecified(decl.Name))
			}
			continue
		}

		if !v.fields.checkNameOrPath(strp(u.TargetPath), declType, "target_path", errs) || u.TargetPath == "" {
			continue
		}
		for _, e := range paths {
			if !pathOverlaps(e.path, u.TargetPath) {
				continue
			}
			if e.path == u.TargetPath {
				errs.add(errDuplicateField(declType, "target_path", u.TargetPath))
			} else if e.kind == CapDirectory || u.Kind == CapDirectory {
				errs.add(errInvalidPathOverlap(declType, u.TargetPath, e.declType, e.path))
			}
		}
		paths = append(paths, pathEntry{u.TargetPath, u.Kind, declType})
	}
}

// checkSourceRef validates a use/offer/expose source reference against
// the name sets built in earlier passes.
func (v *Validator) checkSourceRef(src Source, declType string, sets *nameSets, errs *ErrorList) {
	switch src.Ref {
	case RefParent, RefSelf, RefFramework:
	case RefChild:
		if !sets.children[src.Name] {
			errs.add(errInvalidChild(declType, "source", src.Name))
		}
	default:
		errs.add(errInvalidField(declType, "source"))
	}
}

type exposeTargetKey struct {
	ref  Ref
	name string
}

func (v *Validator) visitExposes(decl *ComponentDecl, sets *nameSets, errs *ErrorList) {
	exposed := make(map[exposeTargetKey]AllowableIds)

	for _, e := range decl.Exposes {
		declType := exposeDeclName(e.Kind)

		switch e.Source.Ref {
		case RefSelf, RefFramework:
		case RefChild:
			if !sets.children[e.Source.Name] {
				errs.add(errInvalidChild(declType, "source", e.Source.Name))
			}
		default:
			errs.add(errInvalidField(declType, "source"))
		}

		switch e.Target {
		case RefParent:
		case RefFramework:
			if e.Source.Ref != RefSelf {
				errs.add(errInvalidField(declType, "target"))
			}
			if e.Subdir != "" {
				errs.add(errExtraneousField(declType, "subdir"))
			}
		default:
			errs.add(errInvalidField(declType, "target"))
		}

		if !v.fields.checkNameOrPath(strp(e.TargetName), declType, "target_name", errs) || e.TargetName == "" {
			continue
		}
		key := exposeTargetKey{e.Target, e.TargetName}
		allow := e.Kind.allowableIds()
		if prev, ok := exposed[key]; ok {
			if prev == AllowableOne || prev != allow {
				errs.add(errDuplicateField(declType, "target_name", e.TargetName))
			}
		} else {
			exposed[key] = allow
		}
	}
}

type targetID struct {
	isCollection bool
	name         string
}

type offerKey struct {
	target targetID
	name   string
}

func strongOffer(o OfferDecl) bool {
	return o.Source.Ref == RefChild && o.Target.Ref == RefChild &&
		o.Source.Name != o.Target.Name && o.Dependency == DependencyStrong
}

func (v *Validator) visitOffers(decl *ComponentDecl, sets *nameSets, graph *dependencyGraph, errs *ErrorList) {
	offered := make(map[offerKey]AllowableIds)

	for _, o := range decl.Offers {
		declType := offerDeclName(o.Kind)
		v.checkSourceRef(o.Source, declType, sets, errs)

		switch o.Kind {
		case CapStorage:
			if o.Source.Ref != RefParent && o.Source.Ref != RefSelf {
				errs.add(errInvalidField(declType, "source"))
			}
			if o.Source.Ref == RefSelf && !sets.storage[o.SourceName] {
				errs.add(errInvalidStorage(declType, "source_name", o.SourceName))
			}
		case CapEvent:
			if o.Source.Ref != RefParent && o.Source.Ref != RefFramework {
				errs.add(errInvalidField(declType, "source"))
			}
		}

		var tid targetID
		switch o.Target.Ref {
		case RefChild:
			if !sets.children[o.Target.Name] {
				errs.add(errInvalidChild(declType, "target", o.Target.Name))
			}
			tid = targetID{false, o.Target.Name}
		case RefCollection:
			if !sets.collections[o.Target.Name] {
				errs.add(errInvalidCollection(declType, "target", o.Target.Name))
			}
			tid = targetID{true, o.Target.Name}
		default:
			errs.add(errInvalidField(declType, "target"))
		}

		if o.Source.Ref == RefChild && o.Target.Ref == RefChild && o.Source.Name == o.Target.Name {
			errs.add(errOfferTargetEqualsSource(declType, o.Target.Name))
		}

		if v.fields.checkNameOrPath(strp(o.TargetName), declType, "target_path", errs) && o.TargetName != "" {
			key := offerKey{tid, o.TargetName}
			allow := o.Kind.allowableIds()
			if prev, ok := offered[key]; ok {
				if prev == AllowableOne || prev != allow {
					errs.add(errDuplicateField(declType, "target_path", o.TargetName))
				}
			} else {
				offered[key] = allow
			}
		}

		if strongOffer(o) {
			graph.addEdge(DependencyNode{NodeChild, o.Source.Name}, DependencyNode{NodeChild, o.Target.Name})
		}
	}
}

func (v *Validator) visitEnvironmentRegistrations(decl *ComponentDecl, sets *nameSets, graph *dependencyGraph, errs *ErrorList) {
	for _, e := range decl.Environments {
		for _, r := range e.Runners {
			v.visitRegistration(e.Name, "runners", r, sets.children, sets.runners, errInvalidRunner, graph, errs)
		}
		for _, r := range e.Resolvers {
			v.visitRegistration(e.Name, "resolvers", r, sets.children, sets.resolvers, errInvalidCapability, graph, errs)
		}
	}
}

func (v *Validator) visitRegistration(
	envName, field string,
	r RegistrationRef,
	children, byName map[string]bool,
	notFound func(decl, field, name string) *Error,
	graph *dependencyGraph,
	errs *ErrorList,
) {
	switch r.Source.Ref {
	case RefChild:
		if !children[r.Source.Name] {
			errs.add(errInvalidChild("EnvironmentDecl", field, r.Source.Name))
			return
		}
		graph.addEdge(DependencyNode{NodeChild, r.Source.Name}, DependencyNode{NodeEnvironment, envName})
	case RefSelf:
		if !byName[r.Name] {
			errs.add(notFound("EnvironmentDecl", field, r.Name))
		}
	case RefParent:
	default:
		errs.add(errInvalidField("EnvironmentDecl", field))
	}
}

// ValidateCapabilities implements the public validate_capabilities(list)
// contract: field checks and name-uniqueness within list alone, no
// access to a surrounding ComponentDecl.
func (v *Validator) ValidateCapabilities(caps []CapabilityDecl) error {
	var errs ErrorList
	seen := make(map[string]bool)
	for _, c := range caps {
		declType := capDeclName(c.Kind)
		v.fields.checkName(strp(c.Name), declType, "name", &errs)
		if c.Name != "" {
			if seen[c.Name] {
				errs.add(errDuplicateField(declType, "name", c.Name))
			} else {
				seen[c.Name] = true
			}
		}
		switch c.Kind {
		case CapStorage:
			v.fields.checkRelativePath(strp(c.SourcePath), declType, "source_path", &errs)
		case CapRunner, CapResolver, CapProtocol, CapDirectory, CapService:
			v.fields.checkPath(strp(c.Path), declType, "path", &errs)
		}
	}
	return errs.AsResult()
}

// ValidateChild implements the public validate_child(child) contract:
// field checks on one child declaration in isolation.
func (v *Validator) ValidateChild(child ChildDecl) error {
	var errs ErrorList
	v.fields.checkName(strp(child.Name), "ChildDecl", "name", &errs)
	v.fields.checkURL(strp(child.URL), "ChildDecl", "url", &errs)
	return errs.AsResult()
}
