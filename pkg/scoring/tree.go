package scoring

import (
	"fmt"
	"math"

	"github.com/wonderfulspam/qoe-guard/pkg/features"
)

// TreeNode is one node of a fixed decision tree. Internal nodes test a
// feature against a threshold (AtOrAbove when value >= threshold); leaves
// carry a risk in [0,1]. The tree is configuration, not a trained model.
type TreeNode struct {
	Feature   string
	Threshold float64
	Below     *TreeNode
	AtOrAbove *TreeNode
	Risk      float64
}

func (n *TreeNode) leaf() bool { return n.Below == nil && n.AtOrAbove == nil }

const maxTreeDepth = 32

func validateNode(n *TreeNode, depth int) error {
	if n == nil {
		return fmt.Errorf("tree node is nil")
	}
	if depth > maxTreeDepth {
		return fmt.Errorf("tree exceeds maximum depth %d", maxTreeDepth)
	}
	if n.leaf() {
		if n.Risk < 0 || n.Risk > 1 || math.IsNaN(n.Risk) {
			return fmt.Errorf("leaf risk %v is outside [0,1]", n.Risk)
		}
		return nil
	}
	if !features.IsFeature(n.Feature) {
		return fmt.Errorf("unknown feature %q in tree node", n.Feature)
	}
	if math.IsNaN(n.Threshold) {
		return fmt.Errorf("threshold for %s is NaN", n.Feature)
	}
	if n.Below == nil || n.AtOrAbove == nil {
		return fmt.Errorf("split on %s is missing a branch", n.Feature)
	}
	if err := validateNode(n.Below, depth+1); err != nil {
		return err
	}
	return validateNode(n.AtOrAbove, depth+1)
}

// TreeScorer is an alternative scoring strategy: a threshold tree instead of
// the logistic model. It honors the same contract — a risk bounded to [0,1]
// and a per-feature contribution breakdown, where the leaf risk is split
// evenly across the features tested on the decision path.
type TreeScorer struct {
	root *TreeNode
}

// NewTreeScorer validates the tree and builds a scorer.
func NewTreeScorer(root *TreeNode) (*TreeScorer, error) {
	if err := validateNode(root, 0); err != nil {
		return nil, fmt.Errorf("invalid decision tree: %w", err)
	}
	return &TreeScorer{root: root}, nil
}

// DefaultTree mirrors the gating heuristics of the logistic defaults: deep
// critical/type damage scores high, isolated low-criticality noise scores low.
func DefaultTree() *TreeNode {
	leaf := func(risk float64) *TreeNode { return &TreeNode{Risk: risk} }
	return &TreeNode{
		Feature: features.FeatureCriticalChanges, Threshold: 3,
		AtOrAbove: &TreeNode{
			Feature: features.FeatureTypeChanges, Threshold: 1,
			AtOrAbove: leaf(0.90),
			Below:     leaf(0.70),
		},
		Below: &TreeNode{
			Feature: features.FeatureCriticalChanges, Threshold: 1,
			AtOrAbove: &TreeNode{
				Feature: features.FeatureRemovedFields, Threshold: 1,
				AtOrAbove: leaf(0.55),
				Below:     leaf(0.45),
			},
			Below: &TreeNode{
				Feature: features.FeatureTypeChanges, Threshold: 1,
				AtOrAbove: leaf(0.40),
				Below: &TreeNode{
					Feature: features.FeatureNumericDeltaMax, Threshold: 100,
					AtOrAbove: leaf(0.35),
					Below:     leaf(0.10),
				},
			},
		},
	}
}

func (s *TreeScorer) Score(fv features.FeatureVector) Result {
	visited := map[string]bool{}
	node := s.root
	for !node.leaf() {
		visited[node.Feature] = true
		value, _ := fv.Value(node.Feature)
		if value >= node.Threshold {
			node = node.AtOrAbove
		} else {
			node = node.Below
		}
	}

	share := 0.0
	if len(visited) > 0 {
		share = node.Risk / float64(len(visited))
	}

	contributions := make([]Contribution, 0, len(features.Names()))
	for _, name := range features.Names() {
		value, _ := fv.Value(name)
		contrib := Contribution{Feature: name, Value: value}
		if visited[name] {
			contrib.Contribution = share
		}
		contributions = append(contributions, contrib)
	}

	return Result{Risk: node.Risk, Contributions: contributions}
}
