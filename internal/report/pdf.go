// Package report renders quiz submission bundles as PDF score reports.
// There is a single content-generation routine; buffered and streamed output
// are thin wrappers over it.
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"quizmaster-service/internal/domain"
)

// Render streams the report for a bundle into w.
func Render(w io.Writer, bundle domain.SubmissionBundle) error {
	return compose(bundle).Output(w)
}

// RenderBuffer renders the whole report into memory. HTTP handlers use this
// so a rendering failure surfaces before any response header is written.
func RenderBuffer(bundle domain.SubmissionBundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := compose(bundle).Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// compose lays out the full report document. The bundle's Quiz may be nil
// (source quiz deleted); all quiz-derived lines fall back to placeholders.
func compose(bundle domain.SubmissionBundle) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(148, 163, 184)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Page %d of {nb} | Generated by QuizMaster", pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	writeHeader(pdf)
	writeStudentInfo(pdf, bundle)
	writeQuizInfo(pdf, bundle)
	writeScoreSummary(pdf, bundle.Result)
	writeDetailedAnswers(pdf, bundle.Result)
	return pdf
}

func writeHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 12, "Quiz Submission Report", "", 1, "C", false, 0, "")
	pdf.SetDrawColor(37, 99, 235)
	pdf.SetLineWidth(0.7)
	pdf.Line(15, pdf.GetY()+2, 195, pdf.GetY()+2)
	pdf.Ln(8)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "BU", 13)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func infoLine(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(71, 85, 105)
	pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
}

func writeStudentInfo(pdf *gofpdf.Fpdf, bundle domain.SubmissionBundle) {
	sectionTitle(pdf, "Student Information")
	infoLine(pdf, "Name: "+bundle.User.Name)
	infoLine(pdf, "Email: "+bundle.User.Email)
	infoLine(pdf, "Submitted At: "+bundle.SubmittedAt.Format("02 Jan 2006 15:04:05 MST"))
	pdf.Ln(4)
}

func writeQuizInfo(pdf *gofpdf.Fpdf, bundle domain.SubmissionBundle) {
	title, category, difficulty := "Unknown Quiz", "General", "medium"
	timeLimit := 0
	if bundle.Quiz != nil {
		title = bundle.Quiz.Title
		category = bundle.Quiz.Category
		difficulty = string(bundle.Quiz.Difficulty)
		timeLimit = bundle.Quiz.TimeLimit
	}

	sectionTitle(pdf, "Quiz Information")
	infoLine(pdf, "Quiz Title: "+title)
	infoLine(pdf, "Category: "+category)
	infoLine(pdf, "Difficulty: "+difficulty)
	infoLine(pdf, fmt.Sprintf("Total Questions: %d", bundle.Result.TotalQuestions))
	infoLine(pdf, fmt.Sprintf("Time Limit: %d minutes", timeLimit))
	pdf.Ln(4)
}

func writeScoreSummary(pdf *gofpdf.Fpdf, result domain.GradingResult) {
	sectionTitle(pdf, "Score Summary")

	r, g, b := scoreColor(result.Percentage)
	pdf.SetFillColor(r, g, b)
	y := pdf.GetY()
	pdf.RoundedRect(15, y, 180, 26, 2, "1234", "F")

	status := "NEEDS IMPROVEMENT"
	if result.Passed {
		status = "PASSED"
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(20, y+4)
	pdf.CellFormat(0, 6, fmt.Sprintf("Score: %d / %d", result.Score, result.TotalQuestions), "", 2, "L", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(0, 6, fmt.Sprintf("Percentage: %.2f%%", result.Percentage), "", 2, "L", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(0, 6, "Status: "+status, "", 1, "L", false, 0, "")
	pdf.SetY(y + 30)
	pdf.Ln(4)
}

func scoreColor(percentage float64) (int, int, int) {
	switch {
	case percentage >= 80:
		return 16, 185, 129
	case percentage >= 60:
		return 37, 99, 235
	case percentage >= 40:
		return 245, 158, 11
	default:
		return 239, 68, 68
	}
}

func writeDetailedAnswers(pdf *gofpdf.Fpdf, result domain.GradingResult) {
	sectionTitle(pdf, "Detailed Answers")

	for i, answer := range result.DetailedAnswers {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		status, sr, sg, sb := "Incorrect", 239, 68, 68
		if answer.IsCorrect {
			status, sr, sg, sb = "Correct", 16, 185, 129
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(30, 41, 59)
		pdf.CellFormat(150, 7, fmt.Sprintf("Question %d:", i+1), "", 0, "L", false, 0, "")
		pdf.SetTextColor(sr, sg, sb)
		pdf.CellFormat(0, 7, status, "", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(30, 41, 59)
		pdf.MultiCell(0, 5, answer.Prompt, "", "L", false)
		pdf.Ln(1)

		if len(answer.Options) > 0 {
			writeOptions(pdf, answer)
		} else {
			writeFreeform(pdf, answer)
		}

		if answer.Explanation != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(107, 114, 128)
			pdf.MultiCell(0, 4, "Explanation: "+answer.Explanation, "", "L", false)
		}

		pdf.Ln(2)
		pdf.SetDrawColor(226, 232, 240)
		pdf.SetLineWidth(0.3)
		pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
		pdf.Ln(3)
	}
}

// writeOptions lists each option, marking the correct one and any wrong
// selection the student made.
func writeOptions(pdf *gofpdf.Fpdf, answer domain.DetailedAnswer) {
	for idx, option := range answer.Options {
		selected := answerSelects(answer.SelectedAnswer, idx)
		correct := keySelects(answer.CorrectAnswer, idx)

		prefix := fmt.Sprintf("%c. ", 'A'+idx)
		r, g, b := 100, 116, 139
		switch {
		case correct:
			prefix += "(correct) "
			r, g, b = 16, 185, 129
		case selected:
			prefix += "(your answer) "
			r, g, b = 239, 68, 68
		}

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(r, g, b)
		pdf.SetX(22)
		pdf.MultiCell(0, 4.5, prefix+option, "", "L", false)
	}
}

// writeFreeform shows the raw submitted and expected values for questions
// without option lists.
func writeFreeform(pdf *gofpdf.Fpdf, answer domain.DetailedAnswer) {
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.SetX(22)
	submitted := answer.SelectedAnswer.String()
	if submitted == "" {
		submitted = "(no answer)"
	}
	pdf.MultiCell(0, 4.5, "Submitted: "+submitted, "", "L", false)
	if expected := answer.CorrectAnswer.String(); expected != "" {
		pdf.SetX(22)
		pdf.MultiCell(0, 4.5, "Expected: "+expected, "", "L", false)
	}
}

func answerSelects(v domain.AnswerValue, option int) bool {
	if idx, ok := v.Index(); ok {
		return idx == option
	}
	if set, ok := v.IndexSet(); ok {
		for _, idx := range set {
			if idx == option {
				return true
			}
		}
	}
	return false
}

func keySelects(k domain.AnswerKey, option int) bool {
	if idx, ok := k.Index(); ok {
		return idx == option
	}
	if set, ok := k.IndexSet(); ok {
		for _, idx := range set {
			if idx == option {
				return true
			}
		}
	}
	return false
}
