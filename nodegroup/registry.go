package nodegroup

import (
	"regexp"
	"sync"

	"github.com/NVIDIA/wlancore/internal/config"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]*$`)

// GroupRegistry is the node-group matcher's mutable state: registered
// groups keyed by name plus the bind-rule multimap used for matching,
// protected by a single mutex the way AIStore's xreg registry guards
// its entries (matching itself runs synchronously, but the registry
// must still be safe for concurrent callers).
type GroupRegistry struct {
	mu     sync.RWMutex
	groups map[string]*NodeGroupInfo
	index  *bindRuleIndex
	alias  Aliaser
	cfg    config.NodeGroup
}

func NewGroupRegistry(cfg config.NodeGroup, alias Aliaser) *GroupRegistry {
	if alias == nil {
		alias = NoAliasing
	}
	return &GroupRegistry{
		groups: make(map[string]*NodeGroupInfo),
		index:  newBindRuleIndex(),
		alias:  alias,
		cfg:    cfg,
	}
}

// AddNodeGroup validates and registers group, then tries every
// candidate composite driver in order; the first one that matches is
// recorded and returned.
func (r *GroupRegistry) AddNodeGroup(group NodeGroup, drivers []CompositeDriver) (*MatchedComposite, error) {
	if err := validateGroup(group, r.cfg); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[group.Name]; exists {
		return nil, errAlreadyExists(group.Name)
	}

	for _, driver := range drivers {
		matched, err := matchCompositeBindProperties(driver, group.Nodes)
		if err != nil {
			return nil, err
		}
		if matched != nil {
			r.groups[group.Name] = &NodeGroupInfo{Nodes: group.Nodes, Matched: matched}
			r.indexNodesLocked(group)
			return matched, nil
		}
	}

	r.groups[group.Name] = &NodeGroupInfo{Nodes: group.Nodes}
	r.indexNodesLocked(group)
	return nil, errNotFoundCode()
}

func (r *GroupRegistry) indexNodesLocked(group NodeGroup) {
	for i, node := range group.Nodes {
		r.index.add(node.BindRules, MatchedNodeGroupInfo{
			Name:      group.Name,
			NodeIndex: uint32(i),
			NumNodes:  uint32(len(group.Nodes)),
		})
	}
}

// MatchNodeRepresentations implements returns every
// registered group with a node matching props, each entry carrying
// that group's composite info if one has been found.
func (r *GroupRegistry) MatchNodeRepresentations(props DeviceProperties) *MatchedDriver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.index.lookup(props, r.alias)
	if len(entries) == 0 {
		return nil
	}

	result := make([]MatchedNodeGroupInfo, 0, len(entries))
	for _, entry := range entries {
		info, ok := r.groups[entry.Name]
		if !ok {
			continue
		}
		if info.Matched != nil {
			entry.CompositeInfo = &info.Matched.CompositeInfo
			entry.NodeNames = info.Matched.NodeNames
			entry.PrimaryIndex = info.Matched.PrimaryIndex
		}
		result = append(result, entry)
	}
	if len(result) == 0 {
		return nil
	}
	return &MatchedDriver{NodeGroups: result}
}

// NewDriverAvailable retries every unmatched group against driver,
// transitioning matched from None to Some on success (// invariant: never Some -> None).
func (r *GroupRegistry) NewDriverAvailable(driver CompositeDriver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, info := range r.groups {
		if info.Matched != nil {
			continue
		}
		matched, err := matchCompositeBindProperties(driver, info.Nodes)
		if err == nil && matched != nil {
			info.Matched = matched
		}
	}
}

// GetNodeGroups is the introspection entry point; an empty nameFilter
// returns every registered group.
func (r *GroupRegistry) GetNodeGroups(nameFilter string) []NamedNodeGroupInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if nameFilter != "" {
		info, ok := r.groups[nameFilter]
		if !ok {
			return nil
		}
		return []NamedNodeGroupInfo{{Name: nameFilter, NodeGroupInfo: *info}}
	}

	out := make([]NamedNodeGroupInfo, 0, len(r.groups))
	for name, info := range r.groups {
		out = append(out, NamedNodeGroupInfo{Name: name, NodeGroupInfo: *info})
	}
	return out
}

type NamedNodeGroupInfo struct {
	Name string
	NodeGroupInfo
}

// validateGroup enforces "Validation of groups on add".
func validateGroup(group NodeGroup, cfg config.NodeGroup) error {
	if group.Name == "" {
		return errInvalidArgs("name must not be empty")
	}
	if cfg.MaxNameLength > 0 && len(group.Name) > cfg.MaxNameLength {
		return errInvalidArgs("name exceeds max length")
	}
	if !nameRegex.MatchString(group.Name) {
		return errInvalidArgs("name must match [A-Za-z0-9_-]")
	}
	if len(group.Nodes) == 0 {
		return errInvalidArgs("nodes must not be empty")
	}
	for _, node := range group.Nodes {
		if len(node.BindRules) == 0 {
			return errInvalidArgs("every node's bind rules must be non-empty")
		}
		for _, cond := range node.BindRules {
			if len(cond.Values) == 0 {
				return errInvalidArgs("bind rule values must be non-empty")
			}
			tag := cond.Values[0].Tag
			for _, v := range cond.Values {
				if v.Tag != tag {
					return errInvalidArgs("bind rule values must share one Symbol tag")
				}
			}
		}
	}
	return nil
}
