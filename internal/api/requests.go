package api

type createUserRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

// preferenceRequest leaves level and account as pointers so absent fields
// take the defaults instead of zero values.
type preferenceRequest struct {
	Platform        string `json:"platform" validate:"required,platform"`
	PreferenceLevel *int   `json:"preferenceLevel" validate:"omitempty,min=1,max=10"`
	HasAccount      *bool  `json:"hasAccount"`
	Notes           string `json:"notes" validate:"max=500"`
}

type createGroupRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	UserIDs     []string `json:"userIds" validate:"dive,required"`
}

type analyzeRequest struct {
	UserIDs          []string `json:"userIds" validate:"required,min=1,dive,required"`
	RequiredFeatures []string `json:"requiredFeatures" validate:"dive,feature"`
}

type scheduleRequest struct {
	GroupID  string `json:"groupId" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
	Datetime string `json:"datetime" validate:"required"`
	Duration int    `json:"duration" validate:"min=0,max=1440"`
	Notes    string `json:"notes" validate:"max=500"`
}

type updateScheduleRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

type suggestTimesRequest struct {
	Platform  string   `json:"platform" validate:"required,platform"`
	Datetimes []string `json:"datetimes" validate:"required,min=1,max=50,dive,required"`
	Duration  int      `json:"duration" validate:"min=0,max=1440"`
}

type exportRequest struct {
	UserIDs          []string `json:"userIds" validate:"required,min=1,dive,required"`
	Format           string   `json:"format"`
	RequiredFeatures []string `json:"requiredFeatures" validate:"dive,feature"`
}
