package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/malika-ai/project-management-prototype/gateway"
	"github.com/malika-ai/project-management-prototype/models"
)

// AuthService radi prijavu nad rosterom tima i izdaje JWT token.
type AuthService struct {
	State     *StateService
	JWTSecret string
}

func NewAuthService(state *StateService, secret string) *AuthService {
	return &AuthService{State: state, JWTSecret: secret}
}

// LoginUser poredi email bez obzira na velika i mala slova i lozinku tačno.
// Nad praznim rosterom prosleđeni kredencijali bezuslovno prave i upisuju
// novog administratora — pogodnost prvog pokretanja, ne bezbednosna granica.
func (a *AuthService) LoginUser(email, password string) (*models.TeamMember, string, error) {
	member, err := a.State.authenticate(email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := a.generateToken(member)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %v", err)
	}
	return member, token, nil
}

// generateToken izdaje HS256 token sa email-om i ulogom, važi 24 sata.
func (a *AuthService) generateToken(member *models.TeamMember) (string, error) {
	claims := jwt.MapClaims{
		"email": member.Email,
		"role":  string(member.Role),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (s *StateService) authenticate(email, password string) (*models.TeamMember, error) {
	s.mu.Lock()

	if len(s.team) == 0 {
		// Bootstrap: prvi nalog postaje administrator.
		member := &models.TeamMember{
			ID:       uuid.New().String(),
			Name:     nameFromEmail(email),
			Email:    email,
			Password: password,
			Role:     models.RoleAdmin,
		}
		s.team = append(s.team, member)
		cp := *member
		s.mu.Unlock()

		s.scheduleWrite(gateway.ActionCreateTeam, &cp)
		return &cp, nil
	}

	for _, m := range s.team {
		if strings.EqualFold(m.Email, email) && m.Password == password {
			cp := *m
			s.mu.Unlock()
			return &cp, nil
		}
	}
	s.mu.Unlock()
	return nil, fmt.Errorf("invalid email or password")
}

func nameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
