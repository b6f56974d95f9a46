package traverser

import "github.com/roach88/linkgraph/internal/graph"

// EmbeddableFrameworks returns the dynamic frameworks path:name copies
// into its bundle.
//
// Only products that can embed frameworks get any. The walk stops at
// dependencies that embed their own frameworks. XCFrameworks the target
// merges manually are left out, and it is an error to merge one that is
// not mergeable. Unit tests embed nothing their host already embeds, and
// nothing at all without a host.
func (t *Traverser) EmbeddableFrameworks(path, name string) (*ReferenceSet, error) {
	defer t.observe("embeddable_frameworks")()
	return t.embeddableFrameworks(path, name)
}

func (t *Traverser) embeddableFrameworks(path, name string) (*ReferenceSet, error) {
	gt, ok := t.Target(path, name)
	if !ok || !canEmbedFrameworks(gt.Target) {
		return NewReferenceSet(), nil
	}
	from := targetNode(path, name)
	refs := NewReferenceSet()

	precompiled := t.filterFrom(from, graph.IsPrecompiledDynamicAndLinkable,
		or(t.canDependencyEmbedFrameworks, graph.IsPrecompiledMacro))
	if merged, ok := gt.Target.MergedBinaryType.ManualSet(); ok {
		for _, d := range precompiled.Sorted() {
			isMerged, err := isXCFrameworkMerged(d, merged, gt.String())
			if err != nil {
				return nil, err
			}
			if isMerged {
				t.logger.Debug("skipping merged xcframework", "target", gt.String(), "dependency", d.String())
				delete(precompiled, d)
			}
		}
	}
	refs.unionPreferringRequired(t.references(precompiled, from))

	others := t.filterFrom(from, t.isEmbeddableTarget, func(d graph.Dependency) bool {
		return t.testTarget(d, func(tg *graph.Target) bool {
			return canEmbedFrameworks(tg) || tg.Product == graph.Macro
		})
	})
	if !gt.Target.MergedBinaryType.IsDisabled() {
		for d := range others {
			if !t.isNonMergeableTarget(d) {
				delete(others, d)
			}
		}
	}
	refs.unionPreferringRequired(t.references(others, from))

	if gt.Target.Product == graph.UnitTests {
		host, ok := t.UnitTestHost(path, name)
		if !ok {
			return NewReferenceSet(), nil
		}
		hostRefs, err := t.embeddableFrameworks(host.Path, host.Target.Name)
		if err != nil {
			return nil, err
		}
		refs.Subtract(hostRefs)
	}
	return refs, nil
}
