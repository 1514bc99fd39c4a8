/*
static.go - Map-backed collaborator implementations (for testing/dev)

PURPOSE:
  In production the surrounding admin backend implements the lookup
  interfaces against its own tables and the chat platform's API. For the
  standalone server and for tests, these map-backed versions are enough.
*/
package reward

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/orbit/reward-engine/ledger"
)

// =============================================================================
// STATIC LOOKUP
// =============================================================================

// StaticLookup implements AmbassadorLookup and ProjectLinkLookup over maps.
// Safe for concurrent use.
type StaticLookup struct {
	mu       sync.RWMutex
	levels   map[ledger.AmbassadorID]int
	accounts map[accountKey]string
	guilds   map[guildKey]string
}

type accountKey struct {
	AmbassadorID ledger.AmbassadorID
	Provider     Provider
}

type guildKey struct {
	ProjectID ProjectID
	Provider  Provider
}

func NewStaticLookup() *StaticLookup {
	return &StaticLookup{
		levels:   make(map[ledger.AmbassadorID]int),
		accounts: make(map[accountKey]string),
		guilds:   make(map[guildKey]string),
	}
}

func (s *StaticLookup) SetLevel(id ledger.AmbassadorID, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[id] = level
}

func (s *StaticLookup) LinkAccount(id ledger.AmbassadorID, provider Provider, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[accountKey{AmbassadorID: id, Provider: provider}] = accountID
}

func (s *StaticLookup) LinkGuild(id ProjectID, provider Provider, guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds[guildKey{ProjectID: id, Provider: provider}] = guildID
}

func (s *StaticLookup) LevelOf(_ context.Context, id ledger.AmbassadorID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.levels[id]
	if !ok {
		return 0, fmt.Errorf("unknown ambassador %s", id)
	}
	return level, nil
}

func (s *StaticLookup) LinkedAccount(_ context.Context, id ledger.AmbassadorID, provider Provider) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.accounts[accountKey{AmbassadorID: id, Provider: provider}]
	return accountID, ok, nil
}

func (s *StaticLookup) LinkedGuild(_ context.Context, id ProjectID, provider Provider) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guildID, ok := s.guilds[guildKey{ProjectID: id, Provider: provider}]
	return guildID, ok, nil
}

var (
	_ AmbassadorLookup  = (*StaticLookup)(nil)
	_ ProjectLinkLookup = (*StaticLookup)(nil)
)

// =============================================================================
// LOGGING GRANT SERVICE
// =============================================================================

// LogGrantService records grant calls to the standard logger instead of
// calling a chat platform. Standalone-server default.
type LogGrantService struct{}

func (LogGrantService) GrantRole(_ context.Context, roleID, guildID, memberID string) error {
	log.Printf("grant role %s to member %s in guild %s", roleID, memberID, guildID)
	return nil
}

var _ ExternalGrantService = LogGrantService{}
