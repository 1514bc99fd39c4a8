/*
lookup.go - Collaborator interfaces consumed by this engine

PURPOSE:
  The engine depends on the surrounding system for ambassador levels,
  linked social accounts, project guild links, and the external grant
  call itself. These are consumed interfaces with no reverse dependency;
  the HTTP layer or workflow engine supplies implementations.

ABSENCE SEMANTICS:
  LinkedAccount and LinkedGuild return (id, ok, err). ok=false with a nil
  error means "not linked" - a normal business state that turns a role
  grant into a no-op, never an error.
*/
package reward

import (
	"context"

	"github.com/orbit/reward-engine/ledger"
)

// Provider names an external platform an account or guild can be linked to.
type Provider string

const (
	ProviderDiscord  Provider = "discord"
	ProviderTelegram Provider = "telegram"
)

// AmbassadorLookup resolves ambassador attributes owned by the surrounding
// system.
type AmbassadorLookup interface {
	// LevelOf returns the ambassador's current level.
	LevelOf(ctx context.Context, id ledger.AmbassadorID) (int, error)

	// LinkedAccount returns the ambassador's account id on the given
	// provider. ok=false means the ambassador hasn't linked one.
	LinkedAccount(ctx context.Context, id ledger.AmbassadorID, provider Provider) (string, bool, error)
}

// ProjectLinkLookup resolves project-to-guild links.
type ProjectLinkLookup interface {
	// LinkedGuild returns the project's guild id on the given provider.
	// ok=false means the project isn't linked to a guild there.
	LinkedGuild(ctx context.Context, id ProjectID, provider Provider) (string, bool, error)
}

// ExternalGrantService assigns a role to a member on the external platform.
// Implementations must confine failures to the returned error; the engine
// treats every failure as non-fatal and never retries synchronously.
type ExternalGrantService interface {
	GrantRole(ctx context.Context, roleID, guildID, memberID string) error
}
