package storage

import (
	"fmt"
	"slices"

	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// PushService stores Web Push subscriptions. Endpoints are unique.
type PushService struct {
	coll *Collection[*entity.PushSubscription]
}

// NewPushService serves coll.
func NewPushService(coll *Collection[*entity.PushSubscription]) *PushService {
	return &PushService{coll: coll}
}

// Subscribe stores a browser subscription.
func (s *PushService) Subscribe(sub *entity.PushSubscription) (*entity.PushSubscription, error) {
	return s.coll.Create(sub, func(existing []*entity.PushSubscription, sub *entity.PushSubscription) error {
		for _, o := range existing {
			if o.Endpoint == sub.Endpoint {
				return fmt.Errorf("endpoint already subscribed: %w", ErrConflict)
			}
		}
		return nil
	})
}

// List returns every subscription.
func (s *PushService) List() ([]*entity.PushSubscription, error) {
	return s.coll.List()
}

// Remove deletes the subscription with the given ID.
func (s *PushService) Remove(id string) error {
	return s.coll.Delete(id)
}

// Unsubscribe deletes the subscription registered for endpoint.
func (s *PushService) Unsubscribe(endpoint string) error {
	_, err := s.coll.Mutate(func(items []*entity.PushSubscription) ([]*entity.PushSubscription, error) {
		i := slices.IndexFunc(items, func(p *entity.PushSubscription) bool { return p.Endpoint == endpoint })
		if i < 0 {
			return nil, s.coll.notFound(endpoint)
		}
		return slices.Delete(items, i, i+1), nil
	})
	return err
}
