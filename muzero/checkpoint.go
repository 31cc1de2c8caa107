package muzero

import (
	ogob "github.com/sw965/omw/encoding/gob"

	"github.com/skylooop/stoix/network"
)

// Snapshot is the persisted unit: parameters plus metadata. Restore yields
// params only; everything else is rebuilt fresh.
type Snapshot struct {
	Params   network.MZParams
	Metadata Metadata
}

type Metadata struct {
	Timestep int
	Config   Config
}

func SaveSnapshot(path string, snap *Snapshot) error {
	return ogob.Save(snap, path)
}

func LoadSnapshot(path string) (Snapshot, error) {
	return ogob.Load[Snapshot](path)
}
