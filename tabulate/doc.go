// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tabulate aggregates accepted responses into per-question, per-panel
statistics.

For every question index and every panel the survey declares:

  - single choice: a counter per option, zero-initialized, incremented by
    the respondent's selection
  - multiple choice: one increment per selected option (not normalized)
  - short answer / subjective: verbatim text list, no deduplication

Panel membership is re-derived from each response's attributes at tabulation
time. A response that matches no currently-declared panel is skipped, so
panel redefinition after the fact degrades the summary instead of breaking
it.
*/
package tabulate
