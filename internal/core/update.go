package core

import "strings"

// FundUpdate is the closed set of emergency fund fields a client may change.
// Nil fields are left untouched.
type FundUpdate struct {
	TargetAmount   *Money `json:"target_amount"`
	CurrentAmount  *Money `json:"current_amount"`
	AlertThreshold *Money `json:"alert_threshold"`
	MonthlyGoal    *Money `json:"monthly_goal"`
}

func (u FundUpdate) IsEmpty() bool {
	return u.TargetAmount == nil && u.CurrentAmount == nil && u.AlertThreshold == nil && u.MonthlyGoal == nil
}

// Apply returns f with the set fields replaced.
func (u FundUpdate) Apply(f EmergencyFund) (EmergencyFund, error) {
	for _, m := range []*Money{u.TargetAmount, u.CurrentAmount, u.AlertThreshold, u.MonthlyGoal} {
		if m != nil {
			if err := m.Validate(); err != nil {
				return f, err
			}
		}
	}
	if u.TargetAmount != nil {
		f.TargetAmount = *u.TargetAmount
	}
	if u.CurrentAmount != nil {
		f.CurrentAmount = *u.CurrentAmount
	}
	if u.AlertThreshold != nil {
		f.AlertThreshold = *u.AlertThreshold
	}
	if u.MonthlyGoal != nil {
		f.MonthlyGoal = *u.MonthlyGoal
	}
	return f, nil
}

// ProfileUpdate is the closed set of profile fields a user may change.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	UserType *string `json:"user_type"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.UserType == nil
}

// Apply validates the set fields and returns the updated user.
func (u ProfileUpdate) Apply(usr User) (User, error) {
	if u.Username != nil {
		name := strings.TrimSpace(*u.Username)
		if err := ValidateUsername(name); err != nil {
			return usr, err
		}
		usr.Username = name
	}
	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		if err := ValidateEmail(email); err != nil {
			return usr, err
		}
		usr.Email = email
	}
	if u.UserType != nil {
		if err := ValidateUserType(*u.UserType); err != nil {
			return usr, err
		}
		usr.UserType = *u.UserType
	}
	return usr, nil
}
