// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Attribute Model

Attributes are a closed union of four demographic dimensions:

  - Age: specific value or inclusive range, bucketed into fixed cohorts
  - Gender: male / female
  - Region: fixed administrative region enumeration
  - Salary: five ordered tiers

Matching semantics:

	ok := models.MatchAttribute(respondent, required)
	panel := models.FindEligiblePanel(attrs, survey.Panels)

Ages compare by cohort bucket (0-17, 18-29, 30-39, 40-49, 50-59, 60-69,
70-100, plus the legacy 70-79 bucket); everything else by equality. An unset
respondent attribute never satisfies a panel requirement. When several panels
are eligible the first in declaration order wins.

# Question/Answer Schema

Questions and answers are matching closed unions, JSON-tagged by "type":

	single_choice, multiple_choice, short_answer, subjective

Structural validation of a submission:

	err := models.ValidateAnswerSet(survey.Questions, req.Answers)

Fails with ErrLengthMismatch, *TypeMismatchError, or *IndexOutOfRangeError,
each carrying the failing position. Choice indices are 1-based.

# Domain Types

Internal data structures:

  - Survey: questions, panel references, and per-survey panel capacities,
    fixed at creation; lifecycle status ready → in_progress → finish
  - Panel: named demographic quota group (attribute set + default capacity)
  - PanelCount: capacity allotted to a panel within one survey
  - SurveyResponse: one accepted submission (immutable)
  - QuestionStatistics / PanelStats: tabulation output
  - ResultSnapshot: sealed tabulation written at close

# Constants

Status values:

	StatusReady      = "ready"
	StatusInProgress = "in_progress"
	StatusFinish     = "finish"
*/
package models
