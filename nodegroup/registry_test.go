package nodegroup_test

import (
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/wlancore/internal/config"
	"github.com/NVIDIA/wlancore/nodegroup"
)

func hasProperty(node nodegroup.NodeRepresentation, key nodegroup.PropertyKey, val nodegroup.Symbol) bool {
	for _, p := range node.BindProperties {
		if p.Key == key && p.Value == val {
			return true
		}
	}
	return false
}

func matcherFor(key nodegroup.PropertyKey, val nodegroup.Symbol) nodegroup.NodeMatcher {
	return func(node nodegroup.NodeRepresentation) bool { return hasProperty(node, key, val) }
}

func mustNode(rules []nodegroup.BindRuleEntry, props []nodegroup.Property) nodegroup.NodeRepresentation {
	n, err := nodegroup.NewNodeRepresentation(rules, props)
	Expect(err).NotTo(HaveOccurred())
	return n
}

var _ = Describe("GroupRegistry", func() {
	var reg *nodegroup.GroupRegistry

	BeforeEach(func() {
		reg = nodegroup.NewGroupRegistry(config.NodeGroup{MaxNameLength: 128}, nodegroup.NoAliasing)
	})

	vendorKey := nodegroup.IntKey(0x1001)

	simpleRule := func(v uint64) []nodegroup.BindRuleEntry {
		return []nodegroup.BindRuleEntry{{
			Key:       vendorKey,
			Condition: nodegroup.BindRuleCondition{Condition: nodegroup.ConditionAccept, Values: []nodegroup.Symbol{nodegroup.NumberSymbol(v)}},
		}}
	}

	// registration of a group matching a composite driver.
	It("matches a three-node group whose second node satisfies the driver's primary", func() {
		node0 := mustNode(simpleRule(1), []nodegroup.Property{{Key: vendorKey, Value: nodegroup.NumberSymbol(1)}})
		node1 := mustNode(simpleRule(2), []nodegroup.Property{{Key: vendorKey, Value: nodegroup.NumberSymbol(2)}})
		node2 := mustNode(simpleRule(3), []nodegroup.Property{{Key: vendorKey, Value: nodegroup.NumberSymbol(3)}})
		group := nodegroup.NodeGroup{Name: "three-node-group", Nodes: []nodegroup.NodeRepresentation{node0, node1, node2}}

		driver := nodegroup.CompositeDriver{
			Info:    nodegroup.CompositeInfo{DriverURL: "fuchsia-pkg://composite"},
			Primary: nodegroup.CompositeNode{Name: "primary", Instructions: matcherFor(vendorKey, nodegroup.NumberSymbol(2))},
			Additional: []nodegroup.CompositeNode{
				{Name: "additional-a", Instructions: matcherFor(vendorKey, nodegroup.NumberSymbol(1))},
				{Name: "additional-b", Instructions: matcherFor(vendorKey, nodegroup.NumberSymbol(3))},
			},
		}

		matched, err := reg.AddNodeGroup(group, []nodegroup.CompositeDriver{driver})
		Expect(err).NotTo(HaveOccurred())
		Expect(matched).NotTo(BeNil())
		Expect(matched.PrimaryIndex).To(Equal(uint32(1)))
		Expect(matched.NodeNames).To(Equal([]string{"additional-a", "primary", "additional-b"}))

		for _, node := range group.Nodes {
			props := nodegroup.DeviceProperties{}
			for _, p := range node.BindProperties {
				props[p.Key] = p.Value
			}
			result := reg.MatchNodeRepresentations(props)
			Expect(result).NotTo(BeNil())

			var found *nodegroup.MatchedNodeGroupInfo
			for i := range result.NodeGroups {
				if result.NodeGroups[i].Name == "three-node-group" {
					found = &result.NodeGroups[i]
					break
				}
			}
			Expect(found).NotTo(BeNil())
			Expect(found.NumNodes).To(Equal(uint32(3)))
			Expect(found.CompositeInfo).NotTo(BeNil())
			Expect(*found.CompositeInfo).To(Equal(driver.Info))
		}
	})

	It("registers successfully but reports NOT_FOUND when no driver matches", func() {
		node := mustNode(simpleRule(9), nil)
		group := nodegroup.NodeGroup{Name: "lonely-group", Nodes: []nodegroup.NodeRepresentation{node}}

		matched, err := reg.AddNodeGroup(group, nil)
		Expect(matched).To(BeNil())
		Expect(nodegroup.IsErrCode(err, nodegroup.ErrNotFound)).To(BeTrue())
	})

	It("transitions an unmatched group to matched=Some when a new driver becomes available", func() {
		node := mustNode(simpleRule(9), []nodegroup.Property{{Key: vendorKey, Value: nodegroup.NumberSymbol(9)}})
		group := nodegroup.NodeGroup{Name: "late-bound-group", Nodes: []nodegroup.NodeRepresentation{node}}

		_, err := reg.AddNodeGroup(group, nil)
		Expect(nodegroup.IsErrCode(err, nodegroup.ErrNotFound)).To(BeTrue())

		driver := nodegroup.CompositeDriver{
			Info:    nodegroup.CompositeInfo{DriverURL: "fuchsia-pkg://late"},
			Primary: nodegroup.CompositeNode{Name: "primary", Instructions: matcherFor(vendorKey, nodegroup.NumberSymbol(9))},
		}
		reg.NewDriverAvailable(driver)

		groups := reg.GetNodeGroups("late-bound-group")
		Expect(groups).To(HaveLen(1))
		Expect(groups[0].Matched).NotTo(BeNil())
		Expect(groups[0].Matched.CompositeInfo).To(Equal(driver.Info))
	})

	It("rejects a duplicate group name with ALREADY_EXISTS", func() {
		node := mustNode(simpleRule(1), nil)
		group := nodegroup.NodeGroup{Name: "dup", Nodes: []nodegroup.NodeRepresentation{node}}
		_, err := reg.AddNodeGroup(group, nil)
		Expect(nodegroup.IsErrCode(err, nodegroup.ErrNotFound)).To(BeTrue())

		_, err = reg.AddNodeGroup(group, nil)
		Expect(nodegroup.IsErrCode(err, nodegroup.ErrAlreadyExists)).To(BeTrue())
	})

	DescribeTable("invalid registration inputs fail with INVALID_ARGS",
		func(group nodegroup.NodeGroup) {
			_, err := reg.AddNodeGroup(group, nil)
			Expect(nodegroup.IsErrCode(err, nodegroup.ErrInvalidArgs)).To(BeTrue())
		},
		Entry("empty name", nodegroup.NodeGroup{Name: "", Nodes: []nodegroup.NodeRepresentation{{BindRules: map[nodegroup.PropertyKey]nodegroup.BindRuleCondition{vendorKey: simpleRule(1)[0].Condition}}}}),
		Entry("name with invalid characters", nodegroup.NodeGroup{Name: "bad name!", Nodes: []nodegroup.NodeRepresentation{{BindRules: map[nodegroup.PropertyKey]nodegroup.BindRuleCondition{vendorKey: simpleRule(1)[0].Condition}}}}),
		Entry("no nodes", nodegroup.NodeGroup{Name: "empty-nodes", Nodes: nil}),
		Entry("node with no bind rules", nodegroup.NodeGroup{Name: "empty-rules", Nodes: []nodegroup.NodeRepresentation{{BindRules: map[nodegroup.PropertyKey]nodegroup.BindRuleCondition{}}}}),
	)

	It("rejects mixed-tag values within one bind rule", func() {
		mixed := map[nodegroup.PropertyKey]nodegroup.BindRuleCondition{
			vendorKey: {Condition: nodegroup.ConditionAccept, Values: []nodegroup.Symbol{nodegroup.NumberSymbol(1), nodegroup.StringSymbol("x")}},
		}
		group := nodegroup.NodeGroup{Name: "mixed-tags", Nodes: []nodegroup.NodeRepresentation{{BindRules: mixed}}}
		_, err := reg.AddNodeGroup(group, nil)
		Expect(nodegroup.IsErrCode(err, nodegroup.ErrInvalidArgs)).To(BeTrue())
	})

	It("folds bind rule entries into a canonical map independent of input order", func() {
		otherKey := nodegroup.IntKey(0x1002)
		forward := []nodegroup.BindRuleEntry{
			{Key: vendorKey, Condition: nodegroup.BindRuleCondition{Condition: nodegroup.ConditionAccept, Values: []nodegroup.Symbol{nodegroup.NumberSymbol(1)}}},
			{Key: otherKey, Condition: nodegroup.BindRuleCondition{Condition: nodegroup.ConditionReject, Values: []nodegroup.Symbol{nodegroup.StringSymbol("x")}}},
		}
		reversed := []nodegroup.BindRuleEntry{forward[1], forward[0]}

		a := mustNode(forward, nil)
		b := mustNode(reversed, nil)

		if diff := cmp.Diff(a.BindRules, b.BindRules); diff != "" {
			Fail("canonical bind-rule map depends on input order (-forward +reversed):\n" + diff)
		}
	})

	It("rejects duplicate keys within one node's bind rule list", func() {
		_, err := nodegroup.NewNodeRepresentation([]nodegroup.BindRuleEntry{
			{Key: vendorKey, Condition: nodegroup.BindRuleCondition{Condition: nodegroup.ConditionAccept, Values: []nodegroup.Symbol{nodegroup.NumberSymbol(1)}}},
			{Key: vendorKey, Condition: nodegroup.BindRuleCondition{Condition: nodegroup.ConditionAccept, Values: []nodegroup.Symbol{nodegroup.NumberSymbol(2)}}},
		}, nil)
		Expect(nodegroup.IsErrCode(err, nodegroup.ErrInvalidArgs)).To(BeTrue())
	})
})
