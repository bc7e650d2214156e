package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/repository"
	"go.uber.org/zap"
)

// SeedUser is an account created at startup.
type SeedUser struct {
	Username   string
	Password   string
	Role       string
	Department string
	Section    string
}

var DefaultSeedUsers = []SeedUser{
	{Username: "727625BIT116", Password: "MCET12345", Role: models.RoleStudent, Department: "IT", Section: "IT-B"},
	{Username: "727625BIT120", Password: "MCET12345", Role: models.RoleStudent, Department: "IT", Section: "IT-B"},
	{Username: "727625BIT280", Password: "MCET12345", Role: models.RoleStudent, Department: "IT", Section: "IT-B"},
	{Username: "727625BIT390", Password: "MCET12345", Role: models.RoleStudent, Department: "IT", Section: "IT-B"},
	{Username: "ADMINMCET", Password: "ADMIN12345", Role: models.RoleAdmin},
}

// SectionForRoll derives a section from the last three digits of a roll
// number: up to 149 is IT-A, up to 299 is IT-B, the rest IT-C.
func SectionForRoll(roll string) string {
	if len(roll) < 3 {
		return "IT-A"
	}
	n, err := strconv.Atoi(roll[len(roll)-3:])
	if err != nil {
		return "IT-A"
	}
	switch {
	case n <= 149:
		return "IT-A"
	case n <= 299:
		return "IT-B"
	default:
		return "IT-C"
	}
}

// SeedUsers creates missing accounts and brings existing sections up to date.
func SeedUsers(ctx context.Context, users repository.UserRepository, seeds []SeedUser, logger *zap.Logger) error {
	for _, seed := range seeds {
		existing, err := users.GetByUsername(ctx, seed.Username)
		switch {
		case err == nil:
			if seed.Section != "" && (existing.Section == nil || *existing.Section != seed.Section) {
				if err := users.UpdateSection(ctx, existing.ID, seed.Section); err != nil {
					return err
				}
			}
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		hash, err := HashPassword(seed.Password)
		if err != nil {
			return err
		}
		section := seed.Section
		if section == "" && seed.Role == models.RoleStudent {
			section = SectionForRoll(seed.Username)
		}

		user := &models.User{Username: seed.Username, PasswordHash: hash, Role: seed.Role}
		if seed.Department != "" {
			user.Department = &seed.Department
		}
		if section != "" {
			user.Section = &section
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
	}
	logger.Info("Users seeded", zap.Int("count", len(seeds)))
	return nil
}
