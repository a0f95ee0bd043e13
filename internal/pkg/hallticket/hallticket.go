// Package hallticket renders exam hall tickets as a PDF, one A4 page per student.
package hallticket

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/ist"
)

// Institution is printed in the page header
type Institution struct {
	Name    string
	Address string
}

const timeLayout = "02 Jan 2006 03:04 PM"

// Render writes one hall ticket page per student to w. With no students a
// single "No students" page is produced.
func Render(w io.Writer, inst Institution, exam *models.Exam, students []*models.Student, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(exam.ExamName+" - Hall Tickets", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(students) == 0 {
		pdf.AddPage()
		header(pdf, tr, inst, exam)
		pdf.SetFont("Arial", "I", 12)
		pdf.Cell(0, 10, "No students")
	}

	for _, s := range students {
		pdf.AddPage()
		header(pdf, tr, inst, exam)
		studentBlock(pdf, tr, s, exam)
		timetable(pdf, tr, exam.Subjects)
		footer(pdf, generatedAt)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build hall tickets: %w", err)
	}
	return pdf.Output(w)
}

func header(pdf *gofpdf.Fpdf, tr func(string) string, inst Institution, exam *models.Exam) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, tr(inst.Name), "", 1, "C", false, 0, "")
	if inst.Address != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, tr(inst.Address), "", 1, "C", false, 0, "")
	}
	pdf.SetDrawColor(40, 70, 140)
	pdf.SetLineWidth(0.5)
	pdf.Line(15, pdf.GetY()+2, 195, pdf.GetY()+2)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "HALL TICKET", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s - %s, Semester %d", exam.ExamName, exam.CourseName, exam.Semester)), "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func studentBlock(pdf *gofpdf.Fpdf, tr func(string) string, s *models.Student, exam *models.Exam) {
	rows := [][2]string{
		{"Name", s.FullName},
		{"Enrollment No.", s.EnrollmentNumber},
		{"Course", exam.CourseName},
		{"Semester", fmt.Sprintf("%d", s.CurrentSemester)},
	}
	if s.UniqueCode != nil {
		rows = append(rows, [2]string{"Student Code", *s.UniqueCode})
	}

	for _, r := range rows {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(45, 7, r[0]+":")
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 7, tr(r[1]))
		pdf.Ln(7)
	}
	pdf.Ln(5)
}

func timetable(pdf *gofpdf.Fpdf, tr func(string) string, subjects []models.ExamSubject) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(40, 70, 140)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 8, "SUBJECT", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "MARKS", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "START (IST)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "END (IST)", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(245, 245, 245)
	for i, sub := range subjects {
		fill := i%2 == 1
		pdf.CellFormat(70, 7, tr(sub.SubjectName), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", sub.TotalMarks), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(45, 7, sub.StartTime.In(ist.Location).Format(timeLayout), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(45, 7, sub.EndTime.In(ist.Location).Format(timeLayout), "1", 1, "C", fill, 0, "")
	}
	if len(subjects) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(180, 7, "Timetable to be announced", "1", 1, "C", false, 0, "")
	}
}

func footer(pdf *gofpdf.Fpdf, generatedAt time.Time) {
	pdf.Ln(20)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(90, 5, "Signature of Candidate")
	pdf.CellFormat(0, 5, "Controller of Examinations", "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 5, "Generated on "+generatedAt.In(ist.Location).Format(timeLayout)+" IST")
	pdf.SetTextColor(0, 0, 0)
}
