package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

var (
	ErrInvalidStorageMode  = errors.New("invalid object storage mode")
	ErrMissingEmulatorHost = errors.New("emulator host required")
	ErrInvalidEmulatorHost = errors.New("invalid emulator host")
)

type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
	// Credentials is inline service-account JSON or a key file path; empty uses ADC.
	Credentials string
}

// ResolveMode normalizes a configured mode. An empty mode picks the emulator
// when a host is configured and real GCS otherwise.
func ResolveMode(raw, emulatorHost string) (ObjectStorageMode, error) {
	switch mode := ObjectStorageMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
		return mode, nil
	case "":
		if strings.TrimSpace(emulatorHost) == "" {
			return ObjectStorageModeGCS, nil
		}
		return ObjectStorageModeGCSEmulator, nil
	default:
		return "", fmt.Errorf("%w %q (want %q or %q)", ErrInvalidStorageMode, raw, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	}
}

func (c ObjectStorageConfig) Validate() error {
	switch c.Mode {
	case ObjectStorageModeGCS:
		return nil
	case ObjectStorageModeGCSEmulator:
		if strings.TrimSpace(c.EmulatorHost) == "" {
			return fmt.Errorf("%w for mode %q", ErrMissingEmulatorHost, c.Mode)
		}
		u, err := url.Parse(c.EmulatorHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w %q, expected an absolute URL like http://fake-gcs:4443", ErrInvalidEmulatorHost, c.EmulatorHost)
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrInvalidStorageMode, c.Mode)
	}
}

func (c ObjectStorageConfig) newClient(ctx context.Context) (*storage.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Mode == ObjectStorageModeGCSEmulator {
		endpoint := strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
		// the storage client also reads the emulator host from the environment
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication(), option.WithEndpoint(endpoint+"/storage/v1/"))
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	switch creds := strings.TrimSpace(c.Credentials); {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return storage.NewClient(ctx, opts...)
}
