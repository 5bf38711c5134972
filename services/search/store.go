package search

// RequestStore persists the status and result of background searches.
type RequestStore interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	Close() error
}

const (
	RequestsBucket = "requests"
	ResultsBucket  = "results"
)
