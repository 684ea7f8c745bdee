// Package seed creates demonstration data: a handful of users, skills, trainer qualifications
// and upcoming classes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/services"
)

// DefaultPassword is the secret of every seeded user
const DefaultPassword = "skilltrack"

type demoUser struct {
	fullName  string
	loginName string
	teaches   []string
}

var (
	demoSkills = []string{"First Aid", "Forklift Operation", "Fire Safety"}

	demoUsers = []demoUser{
		{fullName: "Tom Trainer", loginName: "tom", teaches: []string{"First Aid", "Fire Safety"}},
		{fullName: "Tina Trainer", loginName: "tina", teaches: []string{"Forklift Operation"}},
		{fullName: "Alice Learner", loginName: "alice"},
		{fullName: "Bob Learner", loginName: "bob"},
	}
)

// Result summarises what CreateDefaultData created
type Result struct {
	Users   int
	Skills  int
	Classes int
}

// CreateDefaultData seeds the store unless it already holds skills, in which case it does
// nothing and returns a zero Result.
func CreateDefaultData(ctx context.Context, registry *services.RegistryService, classes *services.ClassService, now time.Time, lgr zerolog.Logger) (Result, error) {
	var res Result

	existing, err := registry.ListSkills(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list skills: %w", err)
	}
	if len(existing) > 0 {
		lgr.Info().Int("skills", len(existing)).Msg("Store already holds data, skipping seed")
		return res, nil
	}

	skillIDs := make(map[string]int64, len(demoSkills))
	for _, name := range demoSkills {
		id, err := registry.CreateSkill(ctx, name)
		if err != nil {
			return res, fmt.Errorf("failed to create skill %q: %w", name, err)
		}
		skillIDs[name] = id
		res.Skills++
	}

	var finalErr error
	trainers := make(map[int64][]int64)
	for _, u := range demoUsers {
		id, err := registry.CreateUser(ctx, u.fullName, u.loginName, DefaultPassword)
		if err != nil {
			lgr.Error().Err(err).Str("loginName", u.loginName).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		res.Users++

		for _, skill := range u.teaches {
			if err := registry.GrantTrainer(ctx, id, skillIDs[skill]); err != nil {
				lgr.Error().Err(err).Str("loginName", u.loginName).Str("skill", skill).Msg("Error granting trainer qualification")
				finalErr = errors.Join(finalErr, err)
				continue
			}
			trainers[id] = append(trainers[id], skillIDs[skill])
		}
	}

	day := 1
	for trainerID, skills := range trainers {
		for _, skillID := range skills {
			start := now.AddDate(0, 0, day)
			_, err := classes.CreateClass(ctx, models.Principal{UserID: trainerID}, services.NewClass{
				SkillID:  skillID,
				Capacity: 4,
				Year:     start.Year(),
				Month:    int(start.Month()),
				Day:      start.Day(),
				Hour:     9,
				Minute:   30,
				Note:     "Demo class",
			})
			if err != nil {
				lgr.Error().Err(err).Int64("trainerID", trainerID).Int64("skillID", skillID).Msg("Error creating demo class")
				finalErr = errors.Join(finalErr, err)
				continue
			}
			res.Classes++
			day++
		}
	}

	lgr.Info().Int("users", res.Users).Int("skills", res.Skills).Int("classes", res.Classes).Msg("Demo data created")
	return res, finalErr
}
