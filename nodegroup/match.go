package nodegroup

// DeviceProperties is the property set a device advertises, matched
// against a node's bind rules.
type DeviceProperties map[PropertyKey]Symbol

// matchNode evaluates single-node matching algorithm.
func matchNode(rules map[PropertyKey]BindRuleCondition, props DeviceProperties, alias Aliaser) bool {
	for key, cond := range rules {
		val, found := props[key]
		if !found {
			if aliasKey, ok := deprecatedAlias(key, alias); ok {
				val, found = props[aliasKey]
			}
		}
		contains := found && cond.hasValue(val)

		var ok bool
		switch cond.Condition {
		case ConditionAccept:
			ok = contains || cond.hasValue(BoolSymbol(false)) && !found
		case ConditionReject:
			ok = !contains
		}
		if !ok {
			return false
		}
	}
	return true
}

// deprecatedAlias resolves key's legacy counterpart via the injected
// Aliaser ("Deprecated-key aliasing").
func deprecatedAlias(key PropertyKey, alias Aliaser) (PropertyKey, bool) {
	if key.IsString {
		if n, ok := alias.DeprecatedNumber(key.String); ok {
			return IntKey(n), true
		}
		return PropertyKey{}, false
	}
	if s, ok := alias.DeprecatedString(key.Int); ok {
		return StringKey(s), true
	}
	return PropertyKey{}, false
}

// matchCompositeBindProperties implements composite-driver matching
// for a group: it returns (nil, nil) when the group's nodes don't
// satisfy the driver.
//
// Known limitation, kept deliberately: additional
// and optional node assignment is greedy and does not backtrack, so a
// group-node that fits multiple driver slots can cause a false
// negative where a smarter assignment would succeed.
func matchCompositeBindProperties(driver CompositeDriver, nodes []NodeRepresentation) (*MatchedComposite, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if len(driver.Additional)+len(driver.Optional)+1 < len(nodes) {
		return nil, nil
	}

	primaryIndex := -1
	for i, n := range nodes {
		if driver.Primary.Instructions(n) {
			primaryIndex = i
			break
		}
	}
	if primaryIndex < 0 {
		return nil, nil
	}

	additionalConsumed := make([]bool, len(driver.Additional))
	optionalConsumed := make([]bool, len(driver.Optional))
	consumedCount := 0

	names := make([]string, len(nodes))
	for i, n := range nodes {
		if i == primaryIndex {
			names[i] = driver.Primary.Name
			continue
		}

		matchedIdx := -1
		fromOptional := false
		for j, consumed := range additionalConsumed {
			if consumed {
				continue
			}
			if driver.Additional[j].Instructions(n) {
				matchedIdx = j
				names[i] = driver.Additional[j].Name
				break
			}
		}
		if matchedIdx < 0 {
			for j, consumed := range optionalConsumed {
				if consumed {
					continue
				}
				if driver.Optional[j].Instructions(n) {
					matchedIdx = j
					fromOptional = true
					names[i] = driver.Optional[j].Name
					break
				}
			}
		}
		if matchedIdx < 0 {
			return nil, nil
		}
		if fromOptional {
			optionalConsumed[matchedIdx] = true
		} else {
			additionalConsumed[matchedIdx] = true
			consumedCount++
		}
	}

	if consumedCount < len(driver.Additional) {
		return nil, nil // every additional node must be consumed
	}

	return &MatchedComposite{
		CompositeInfo: driver.Info,
		NodeNames:     names,
		PrimaryIndex:  uint32(primaryIndex),
	}, nil
}
