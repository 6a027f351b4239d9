// Package dedupe provides the shared singleflight group used to collapse
// concurrent identical simulation requests. A seeded run is deterministic,
// so callers asking for the same run key can share one result.
package dedupe

import "golang.org/x/sync/singleflight"

// SimulationGroup deduplicates seeded simulation runs keyed by
// keys.RunKey.
var SimulationGroup singleflight.Group
