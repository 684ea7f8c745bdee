package models

// Skill is static reference data ('skills' table)
type Skill struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// TrainerQualification authorizes a user to teach and evaluate a skill ('trainers' table)
type TrainerQualification struct {
	UserID  int64 `json:"userId" db:"user_id"`
	SkillID int64 `json:"skillId" db:"skill_id"`
}
