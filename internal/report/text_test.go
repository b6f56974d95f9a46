package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linkgraph/internal/fingerprint"
	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/platform"
	"github.com/roach88/linkgraph/internal/traverser"
)

func sampleReports() []TargetReport {
	return []TargetReport{
		{
			Target:  "/ws/App:App",
			Project: "/ws/App",
			Name:    "App",
			Product: graph.App,
			Linkable: []traverser.Reference{
				{
					Kind:      traverser.RefSDK,
					Path:      "/sdk/UIKit.framework",
					Status:    graph.StatusRequired,
					Source:    graph.SDKSourceSystem,
					Condition: platform.When(platform.FilterIOS),
				},
				{
					Kind:        traverser.RefProduct,
					Target:      "Core",
					ProductName: "libCore.a",
					Product:     graph.StaticLibrary,
					Status:      graph.StatusRequired,
				},
			},
			Embeddable: []traverser.Reference{{
				Kind:       traverser.RefXCFramework,
				Path:       "/xc/Pay.xcframework",
				Linking:    graph.LinkingDynamic,
				Status:     graph.StatusRequired,
				Libraries:  []string{"ios-arm64"},
				BinaryName: "Pay",
			}},
			LibrarySearchPaths:   []string{"/libs/ssl"},
			TargetDependencies:   []string{"/ws/App:Core"},
			BuildsForMacCatalyst: true,
		},
		{
			Target:             "/ws/App:AppTests",
			Project:            "/ws/App",
			Name:               "AppTests",
			Product:            graph.UnitTests,
			TargetDependencies: []string{"/ws/App:App", "/ws/App:Core"},
			Host:               "/ws/App:App",
			DependsOnXCTest:    true,
		},
	}
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReports()))
	golden(t).Assert(t, "reports_text", buf.Bytes())
}

func TestReportsCanonicalJSON(t *testing.T) {
	data, err := fingerprint.MarshalCanonical(sampleReports())
	require.NoError(t, err)
	golden(t).Assert(t, "reports_json", data)
}

func TestWriteSummaryText(t *testing.T) {
	s := Summary{
		Name:     "Shop",
		Path:     "/ws",
		Projects: 2,
		Targets:  4,
		ExternalTargets: []ExternalTarget{{
			Target:       "/ws/.build/checkouts/Pay:Pay",
			Platforms:    []platform.Platform{platform.IOS},
			Destinations: []platform.Destination{platform.IPad, platform.IPhone},
		}},
		Orphans:    []string{"/ws/.build/checkouts/Pay:PayLegacy"},
		BuildOrder: []string{"/ws/App:Core", "/ws/App:App"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryText(&buf, s))
	golden(t).Assert(t, "summary_text", buf.Bytes())
}
