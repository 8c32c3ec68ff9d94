package storage

// Backend defines the contract for durable blob storage operations
type Backend interface {
	Store(name string, data []byte) error
	Retrieve(name string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(name string) error
}
