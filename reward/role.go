/*
role.go - External role grant strategy

PURPOSE:
  Fulfils an external_role spec by asking the chat platform to assign the
  spec's role to the ambassador's linked account within the task project's
  linked guild.

NO-OP SEMANTICS:
  If the ambassador has no linked account, or the project has no linked
  guild, the grant is a silent no-op SUCCESS (Attempted=false). A reward
  that cannot be delivered because the recipient never linked an account
  is a normal business state, not a failure.

BEST-EFFORT SEMANTICS:
  When both links exist, the grant call is best-effort: a failure is
  reported as a GrantError on this one result, never retried synchronously
  and never rolled back against coin credits applied for the same task.
  The surrounding system may retry the grant out-of-band.
*/
package reward

import "context"

// =============================================================================
// ROLE STRATEGY
// =============================================================================

type RoleStrategy struct {
	Provider    Provider
	Ambassadors AmbassadorLookup
	Projects    ProjectLinkLookup
	Grants      ExternalGrantService
}

func NewRoleStrategy(provider Provider, ambassadors AmbassadorLookup, projects ProjectLinkLookup, grants ExternalGrantService) *RoleStrategy {
	return &RoleStrategy{Provider: provider, Ambassadors: ambassadors, Projects: projects, Grants: grants}
}

func (s *RoleStrategy) Apply(ctx context.Context, task Task, spec Spec, ambassador Ambassador, _ string) Applied {
	memberID, linked, err := s.Ambassadors.LinkedAccount(ctx, ambassador.ID, s.Provider)
	if err != nil {
		return Applied{Kind: KindExternalRole, OK: false, Err: err}
	}
	if !linked {
		return Applied{Kind: KindExternalRole, OK: true, Attempted: false}
	}

	guildID, linked, err := s.Projects.LinkedGuild(ctx, task.ProjectID, s.Provider)
	if err != nil {
		return Applied{Kind: KindExternalRole, OK: false, Err: err}
	}
	if !linked {
		return Applied{Kind: KindExternalRole, OK: true, Attempted: false}
	}

	if err := s.Grants.GrantRole(ctx, spec.Value, guildID, memberID); err != nil {
		return Applied{
			Kind:      KindExternalRole,
			OK:        false,
			Attempted: true,
			Err:       &GrantError{RoleID: spec.Value, GuildID: guildID, Cause: err},
		}
	}
	return Applied{Kind: KindExternalRole, OK: true, Attempted: true}
}
