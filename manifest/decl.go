package manifest

// Ref discriminates the reference kinds a source or target can name
// (child/collection/environment references).
type Ref int

const (
	RefParent Ref = iota
	RefSelf
	RefFramework
	RefChild
	RefCollection
)

// Source names where a capability (use/expose/offer) comes from; Name
// is only meaningful when Ref is RefChild.
type Source struct {
	Ref  Ref
	Name string
}

// Target names where an expose or offer goes; Name is the child or
// collection name when Ref is RefChild/RefCollection.
type Target struct {
	Ref  Ref
	Name string
}

// DependencyType controls whether an offer edge participates in cycle
// detection ("Dependency graph").
type DependencyType int

const (
	DependencyStrong DependencyType = iota
	DependencyWeakForMigration
)

// CapabilityKind discriminates the capability declaration/use/expose/
// offer kinds this validator understands.
type CapabilityKind int

const (
	CapProtocol CapabilityKind = iota
	CapDirectory
	CapStorage
	CapRunner
	CapResolver
	CapEvent
	CapService
)

// AllowableIds controls per-target uniqueness: services may repeat a
// target name across Many-tagged offers, every other capability kind
// is restricted to One.
type AllowableIds int

const (
	AllowableOne AllowableIds = iota
	AllowableMany
)

func (k CapabilityKind) allowableIds() AllowableIds {
	if k == CapService {
		return AllowableMany
	}
	return AllowableOne
}

type ChildDecl struct {
	Name        string
	URL         string
	Environment string // empty if unassigned
}

type CollectionDecl struct {
	Name        string
	Environment string
}

// CapabilityDecl is a component-declared capability of any kind;
// fields not meaningful to Kind are left zero.
type CapabilityDecl struct {
	Kind       CapabilityKind
	Name       string
	Path       string // directory/protocol/service backing path
	Source     Source // storage's backing directory source
	SourcePath string
}

// RegistrationRef is one runner or resolver registration inside an
// EnvironmentDecl.
type RegistrationRef struct {
	Name   string
	Source Source
}

type EnvironmentDecl struct {
	Name      string
	Runners   []RegistrationRef
	Resolvers []RegistrationRef
}

type UseDecl struct {
	Kind       CapabilityKind
	Source     Source
	Name       string // capability (or event) name being used
	TargetPath string // the path/name this use is mounted at locally
	Subdir     string
}

type ExposeDecl struct {
	Kind       CapabilityKind
	Source     Source // Self, Framework, or Child
	SourceName string
	Target     Ref // Parent or Framework
	TargetName string
	Subdir     string
}

type OfferDecl struct {
	Kind         CapabilityKind
	Source       Source
	SourceName   string
	Target       Target // Child or Collection
	TargetName   string
	Dependency   DependencyType
}

// ComponentDecl is the decoded manifest this validator operates on,
// the Go-native stand-in for the wire-format component declaration
// (wire-format parsing itself is out of scope).
type ComponentDecl struct {
	Name         string // moniker, used only in MultipleRunnersSpecified's message
	Children     []ChildDecl
	Collections  []CollectionDecl
	Capabilities []CapabilityDecl
	Environments []EnvironmentDecl
	Uses         []UseDecl
	Exposes      []ExposeDecl
	Offers       []OfferDecl
}
