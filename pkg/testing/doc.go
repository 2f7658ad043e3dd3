// Package testing provides a test harness for banner layouts.
//
// # Quick Start
//
// Create a tester from a configuration, pump a pass and make assertions:
//
//	func TestMyBanner(t *testing.T) {
//	    tester := bannertest.NewBannerTesterWithT(t)
//	    tester.LoadYAML(configYAML)
//	    tester.Pump()
//
//	    // Find nodes
//	    title := tester.Find(bannertest.ByID("title")).First()
//
//	    // Simulate a button press
//	    tester.Tap(bannertest.ByText("Accept"))
//	    tester.Pump()
//
//	    if tester.Visibility().Banner {
//	        t.Error("expected banner to be hidden")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture and compare render tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/my_banner.snapshot.json")
//
// Update snapshots with:
//
//	BANNERKIT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Image Testing
//
// Images resolve through [MapLoader], so no network is touched. Cache-busting
// timestamps come from the tester's [FakeClock]:
//
//	tester.Images().Serve("/uploads/logo.png", imagesrc.ImageInfo{Width: 10, Height: 10})
//	tester.Clock().Advance(time.Second)
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import bannertest "github.com/go-drift/bannerkit/pkg/testing"
package testing
