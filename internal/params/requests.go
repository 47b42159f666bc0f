package params

type timeSeriesRequest struct {
	Granularity string `query:"granularity" validate:"oneof=day week month quarter year"`
	StartDate   string `query:"start_date" validate:"omitempty,isodate"`
	EndDate     string `query:"end_date" validate:"omitempty,isodate"`
}

func (r timeSeriesRequest) dateRanges() []dateRange {
	return []dateRange{{"start_date", "end_date", r.StartDate, r.EndDate}}
}

type usersRequest struct {
	StartDate string `query:"start_date" validate:"omitempty,isodate"`
	EndDate   string `query:"end_date" validate:"omitempty,isodate"`
	Limit     *int   `query:"limit" validate:"omitnil,min=1,max=100"`
	Offset    *int   `query:"offset" validate:"omitnil,min=0"`
}

func (r usersRequest) dateRanges() []dateRange {
	return []dateRange{{"start_date", "end_date", r.StartDate, r.EndDate}}
}

type groupsRequest struct {
	StartDate string `query:"start_date" validate:"omitempty,isodate"`
	EndDate   string `query:"end_date" validate:"omitempty,isodate"`
}

func (r groupsRequest) dateRanges() []dateRange {
	return []dateRange{{"start_date", "end_date", r.StartDate, r.EndDate}}
}

type leaderboardRequest struct {
	StartDate string `query:"start_date" validate:"omitempty,isodate"`
	EndDate   string `query:"end_date" validate:"omitempty,isodate"`
	Limit     *int   `query:"limit" validate:"omitnil,min=1,max=100"`
}

func (r leaderboardRequest) dateRanges() []dateRange {
	return []dateRange{{"start_date", "end_date", r.StartDate, r.EndDate}}
}

type summaryRequest struct {
	StartDate string `query:"start_date" validate:"omitempty,isodate"`
	EndDate   string `query:"end_date" validate:"omitempty,isodate"`
}

func (r summaryRequest) dateRanges() []dateRange {
	return []dateRange{{"start_date", "end_date", r.StartDate, r.EndDate}}
}

type compareRequest struct {
	CurrentStart  string `query:"current_start" validate:"required,isodate"`
	CurrentEnd    string `query:"current_end" validate:"required,isodate"`
	PreviousStart string `query:"previous_start" validate:"required,isodate"`
	PreviousEnd   string `query:"previous_end" validate:"required,isodate"`
}

func (r compareRequest) dateRanges() []dateRange {
	return []dateRange{
		{"current_start", "current_end", r.CurrentStart, r.CurrentEnd},
		{"previous_start", "previous_end", r.PreviousStart, r.PreviousEnd},
	}
}
