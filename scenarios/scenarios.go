// Package scenarios contains workloads runnable by name from the cli.
package scenarios

import (
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/native"
)

const (
	NameNative       = "native"
	NameNativeOnsite = "native_onsite"
	NameNativeRead   = "native_read"
	NameS3           = "s3"

	// UniqueHeader attribute makes every written object distinct
	UniqueHeader = "unique_header"
)

func init() {
	frostload.RegisterScenario(NameNative, &Native{})
	frostload.RegisterScenario(NameNativeOnsite, &NativeOnsite{})
	frostload.RegisterScenario(NameNativeRead, &NativeRead{})
	frostload.RegisterScenario(NameS3, &S3{})
}

// base is embedded by every scenario
type base struct {
	L *frostload.Logger
}

// logger of a prototype during setup
func (b *base) setupLogger(name string, cfg frostload.RunnerConfig) *frostload.Logger {
	if b.L == nil {
		b.L = frostload.NewNamedLogger(name, cfg.LogEncoding, cfg.LogLevel)
	}
	return b.L
}

// cloneInto copies prototype fields into a virtual user scenario
func cloneInto(to interface{}, from interface{}, r *frostload.Runner) {
	if err := copier.Copy(to, from); err != nil {
		r.L.Errorf("failed to clone scenario: %v", err)
	}
}

func uniqueHeaders() map[string]string {
	return map[string]string{UniqueHeader: uuid.New().String()}
}

func connectNative(t frostload.TargetConfig, dump bool, l *frostload.Logger) (*native.Client, error) {
	return native.Connect(t.Endpoint, t.Credential,
		native.WithDialTimeout(t.DialTimeout),
		native.WithStreamTimeout(t.StreamTimeout),
		native.WithDumpTransport(dump),
		native.WithLogger(l),
	)
}
