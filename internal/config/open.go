package config

import (
	"context"
	"fmt"
)

// OpenStore builds the settings backend selected by sc. The returned close
// function releases backend resources and is never nil.
func OpenStore(ctx context.Context, sc StoreConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch sc.Driver {
	case DriverMemory:
		return WithSecretFromEnv(NewMemoryStore(Settings{})), noop, nil
	case DriverFile, "":
		return WithSecretFromEnv(NewFileStore(sc.Path)), noop, nil
	case DriverBolt:
		b, err := OpenBoltStore(sc.Path)
		if err != nil {
			return nil, noop, err
		}
		return WithSecretFromEnv(b), b.Close, nil
	case DriverPostgres:
		p, err := ConnectPostgres(ctx, sc.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting settings database: %w", err)
		}
		return WithSecretFromEnv(p), p.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}
