package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// State é o registro mínimo de sessão persistido localmente.
// Arquivo ausente ou corrompido significa não autenticado.
type State struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	UID   string `json:"uid"`
	Token string `json:"token,omitempty"`
}

// Authenticated indica se há uma sessão ativa
func (s State) Authenticated() bool { return s.Email != "" }

// Store centraliza o estado de sessão com get/set/clear explícitos e
// assinaturas para UI reativa, no lugar de leituras avulsas espalhadas
type Store struct {
	mu    sync.Mutex
	path  string
	state State
	subs  []chan State
}

// New carrega o estado do arquivo (best-effort) e retorna o Store
func New(path string) *Store {
	s := &Store{path: path}
	if b, err := os.ReadFile(path); err == nil {
		var st State
		if json.Unmarshal(b, &st) == nil {
			s.state = st
		}
	}
	return s
}

// DefaultPath resolve o caminho padrão do arquivo de sessão
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ffarena", "session.json")
}

// Get retorna o estado atual
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set persiste o novo estado e notifica os assinantes
func (s *Store) Set(st State) error {
	s.mu.Lock()
	s.state = st
	subs := append([]chan State(nil), s.subs...)
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return err
	}
	notify(subs, st)
	return nil
}

// Clear remove a sessão persistida e notifica os assinantes
func (s *Store) Clear() error {
	s.mu.Lock()
	s.state = State{}
	subs := append([]chan State(nil), s.subs...)
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	notify(subs, State{})
	return nil
}

// Subscribe retorna um canal que recebe cada mudança de estado.
// Canal com buffer 1: um assinante lento recebe só o estado mais recente.
func (s *Store) Subscribe() <-chan State {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func notify(subs []chan State, st State) {
	for _, ch := range subs {
		select {
		case ch <- st:
		default:
			// descarta o estado antigo e entrega o novo
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
