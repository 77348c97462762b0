package commands

import (
	"context"

	"github.com/starford/tmgr/internal/apperr"
	"github.com/starford/tmgr/internal/migrate"
)

// Migrate rewrites stored tasks from the given prior schema version to the
// current one.
func (s *Service) Migrate(ctx context.Context, from migrate.Version) (Result[migrate.Version], error) {
	return s.MigrateTo(ctx, from, s.currentMajor)
}

// MigrateTo is Migrate for a binary whose major version differs from the
// running one, as after an upgrade.
func (s *Service) MigrateTo(ctx context.Context, from migrate.Version, toMajor int) (Result[migrate.Version], error) {
	const cmd = "migrate"
	msg, err := migrate.Run(ctx, s.store, from, toMajor, s.logger)
	if err != nil {
		return Result[migrate.Version]{}, apperr.Wrap(cmd, KindDatabase, err)
	}
	return Result[migrate.Version]{Message: msg, Payload: from}, nil
}

// Upgrade replaces the running binary with the latest release.
func (s *Service) Upgrade(ctx context.Context) (Result[struct{}], error) {
	const cmd = "upgrade"
	if s.upgrader == nil {
		return Result[struct{}]{}, apperr.New(cmd, KindUpgrade, "upgrade is not configured")
	}
	msg, err := s.upgrader.Run(ctx)
	if err != nil {
		return Result[struct{}]{}, apperr.Wrap(cmd, KindUpgrade, err)
	}
	return Result[struct{}]{Message: msg}, nil
}
