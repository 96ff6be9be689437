// Package metrics exposes Prometheus collectors for the road server.
package metrics

const (
	namespace = "hashroad"
	unknown   = "unknown"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown(v string) string {
	if v == "" {
		return unknown
	}
	return v
}
