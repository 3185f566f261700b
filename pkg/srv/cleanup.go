package srv

import "context"

type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

// NewCleanup wraps a close function, such as sql.DB.Close, so it runs
// during shutdown.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
