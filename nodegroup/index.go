package nodegroup

// bindRulesKey canonicalizes a node's bind rules into a comparable map
// key ("the ordered map is canonical for indexing"). Go
// maps aren't comparable, so the canonical form is a sorted string
// built from each (key, condition, values) triple.
type bindRulesKey string

func canonicalize(rules map[PropertyKey]BindRuleCondition) bindRulesKey {
	keys := make([]PropertyKey, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sortPropertyKeys(keys)

	var b []byte
	for _, k := range keys {
		b = appendPropertyKey(b, k)
		cond := rules[k]
		b = append(b, byte(cond.Condition), '|')
		for _, v := range cond.Values {
			b = appendSymbol(b, v)
		}
		b = append(b, ';')
	}
	return bindRulesKey(b)
}

func sortPropertyKeys(keys []PropertyKey) {
	// insertion sort: lexical over (IsString, Int, String), small N.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && lessKey(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

func lessKey(a, b PropertyKey) bool {
	if a.IsString != b.IsString {
		return !a.IsString // numeric keys sort before string keys
	}
	if a.IsString {
		return a.String < b.String
	}
	return a.Int < b.Int
}

func appendPropertyKey(b []byte, k PropertyKey) []byte {
	if k.IsString {
		b = append(b, 's', ':')
		b = append(b, k.String...)
	} else {
		b = append(b, 'n', ':')
		b = appendUint(b, k.Int)
	}
	return append(b, ',')
}

func appendSymbol(b []byte, s Symbol) []byte {
	b = append(b, byte(s.Tag), ':')
	switch s.Tag {
	case SymbolNumber:
		b = appendUint(b, s.Number)
	case SymbolString, SymbolEnum:
		b = append(b, s.String...)
	case SymbolBool:
		if s.Bool {
			b = append(b, '1')
		} else {
			b = append(b, '0')
		}
	}
	return append(b, ',')
}

func appendUint(b []byte, v uint64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}

// bindRuleIndex is the multimap from "Indexing": every
// node's canonicalized bind rules map to the groups that registered
// it, deduplicated by (group name, node index).
type bindRuleIndex struct {
	byKey      map[bindRulesKey][]MatchedNodeGroupInfo
	rulesByKey map[bindRulesKey]map[PropertyKey]BindRuleCondition
}

func newBindRuleIndex() *bindRuleIndex {
	return &bindRuleIndex{
		byKey:      make(map[bindRulesKey][]MatchedNodeGroupInfo),
		rulesByKey: make(map[bindRulesKey]map[PropertyKey]BindRuleCondition),
	}
}

func (idx *bindRuleIndex) add(rules map[PropertyKey]BindRuleCondition, entry MatchedNodeGroupInfo) {
	key := canonicalize(rules)
	idx.rulesByKey[key] = rules
	entries := idx.byKey[key]
	for _, e := range entries {
		if e.Name == entry.Name && e.NodeIndex == entry.NodeIndex {
			return
		}
	}
	idx.byKey[key] = append(entries, entry)
}

// lookup scans every indexed key and collects entries whose bind
// rules match the given device properties, deduplicated across keys
// by (group name, node index).
func (idx *bindRuleIndex) lookup(props DeviceProperties, alias Aliaser) []MatchedNodeGroupInfo {
	type dedupKey struct {
		name string
		idx  uint32
	}
	seen := make(map[dedupKey]bool)
	var out []MatchedNodeGroupInfo
	for key, rules := range idx.rulesByKey {
		if !matchNode(rules, props, alias) {
			continue
		}
		for _, entry := range idx.byKey[key] {
			dk := dedupKey{entry.Name, entry.NodeIndex}
			if seen[dk] {
				continue
			}
			seen[dk] = true
			out = append(out, entry)
		}
	}
	return out
}
