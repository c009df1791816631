package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HoldRequest asks for a time-boxed hold on every listed seat.
type HoldRequest struct {
	ShowID     uint64
	Seats      []string
	ClaimantID string
}

// HoldResult describes a granted hold.
type HoldResult struct {
	ShowID    uint64        `json:"showId"`
	Seats     []string      `json:"seats"`
	ExpiresAt time.Time     `json:"expiresAt"`
	TTL       time.Duration `json:"-"`
}

// Hold places a hold on all requested seats for the claimant or on none.
//
// Seats already in the ledger fail the request with ErrAlreadyBooked before
// any key is written.  Otherwise one SET NX EX per seat is sent in a single
// MULTI/EXEC batch.  Redis evaluates each SET on its own, so when any of
// them fails every requested key still owned by the claimant is released
// and the request fails with ErrConflict naming the seats that were taken.
func (c *Coordinator) Hold(ctx context.Context, req HoldRequest) (*HoldResult, error) {
	r, err := c.prepare(ctx, req.ShowID, req.Seats, req.ClaimantID)
	if err != nil {
		return nil, err
	}
	log := c.log.With(zap.Uint64("show_id", req.ShowID), zap.String("claimant_id", r.claimant))

	existing, err := c.ledger.FindByShowAndSeats(ctx, req.ShowID, r.seats)
	if err != nil {
		return nil, internalErr("check bookings", err)
	}
	if len(existing) > 0 {
		booked := make(map[string]struct{}, len(existing))
		for _, b := range existing {
			booked[b.SeatLabel] = struct{}{}
		}
		for _, l := range r.seats {
			if _, ok := booked[l]; ok {
				return nil, seatErr(ErrAlreadyBooked, l)
			}
		}
	}

	keys := c.holdKeys(req.ShowID, r.seats)
	start := c.now()
	acquired, err := c.locks.AcquireAll(ctx, keys, r.claimant, c.ttl)
	if err != nil {
		// Some SETs may have gone through before the failure surfaced.
		c.rollback(ctx, log, keys, r.claimant)
		return nil, internalErr("acquire holds", err)
	}

	var lost []string
	for i, ok := range acquired {
		if !ok {
			lost = append(lost, r.seats[i])
		}
	}
	if len(lost) > 0 {
		c.rollback(ctx, log, keys, r.claimant)
		log.Info("hold conflict", zap.Strings("seats", lost))
		return nil, seatErr(ErrConflict, lost...)
	}

	log.Info("seats held", zap.Strings("seats", r.seats), zap.Duration("ttl", c.ttl))
	return &HoldResult{
		ShowID:    req.ShowID,
		Seats:     r.seats,
		ExpiresAt: start.Add(c.ttl).UTC(),
		TTL:       c.ttl,
	}, nil
}

// rollback releases every key still owned by claimant.  It runs even when
// the request context is already cancelled, and its failures are only
// logged: the TTL reclaims whatever it could not delete.
func (c *Coordinator) rollback(ctx context.Context, log *zap.Logger, keys []string, claimant string) {
	ctx = context.WithoutCancel(ctx)
	for _, k := range keys {
		if _, err := c.locks.ReleaseIfOwner(ctx, k, claimant); err != nil {
			log.Warn("hold rollback failed", zap.String("key", k), zap.Error(err))
		}
	}
}
