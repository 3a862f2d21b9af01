package service

import (
	"github.com/acadify/acadify-web/internal/adapters/academicapi"
	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

// Source is one API payload a page needs. The payload is stored under Key in
// the page data that card and table expressions query.
type Source struct {
	Key  string
	Path string
	// Forward lists page query parameters passed through to the API request.
	Forward []string
	// Defaults resolves a {placeholder} in Path from data fetched by the
	// page's other sources when the page URL does not set it.
	Defaults map[string]string
}

// Card is a single stat tile.
type Card struct {
	Label  string
	Expr   string
	Suffix string
}

// Column is one table column; Expr is evaluated against the row.
type Column struct {
	Label string
	Expr  string
}

// Table renders the array selected by Expr.
type Table struct {
	Title   string
	Expr    string
	Columns []Column
	// IDExpr selects the row id used by row actions.
	IDExpr string
	Empty  string
}

// Form names the write action a page offers.
type Form string

const (
	FormNone    Form = ""
	FormGrade   Form = "grade"
	FormUser    Form = "user"
	FormProfile Form = "profile"
)

// PageSpec declares a dashboard page.
type PageSpec struct {
	Slug    string
	Title   string
	Sources []Source
	Cards   []Card
	Tables  []Table
	Form    Form
	// Filters lists query parameters the page exposes as filters.
	Filters []string
}

// DefaultPage is the sub-page served when none or an unknown one is requested.
const DefaultPage = "overview"

var profilePage = PageSpec{
	Slug:    "profile",
	Title:   "Profile",
	Sources: []Source{{Key: "profile", Path: academicapi.ProfilePath}},
	Cards: []Card{
		{Label: "Name", Expr: "profile.name"},
		{Label: "Email", Expr: "profile.email"},
		{Label: "Role", Expr: "profile.role"},
	},
	Form: FormProfile,
}

var studentPages = []PageSpec{
	{
		Slug:    "overview",
		Title:   "Overview",
		Sources: []Source{{Key: "overview", Path: academicapi.StudentDashboardPath}},
		Cards: []Card{
			{Label: "Average Score", Expr: "overview.avgScore", Suffix: "%"},
			{Label: "Attendance", Expr: "overview.attendance", Suffix: "%"},
			{Label: "Class Rank", Expr: "join(' / ', [to_string(overview.rank), to_string(overview.totalStudents)])"},
		},
		Tables: []Table{{
			Title:   "Recent Activity",
			Expr:    "overview.recentActivity",
			Columns: []Column{{Label: "Type", Expr: "type"}, {Label: "Description", Expr: "description"}},
			Empty:   "No recent activity",
		}},
	},
	{
		Slug:    "marks",
		Title:   "Marks",
		Sources: []Source{{Key: "marks", Path: academicapi.StudentMarksPath}},
		Cards: []Card{
			{Label: "Recorded", Expr: "length(marks)"},
			{Label: "Best Mark", Expr: "max(marks[*].marks)"},
		},
		Tables: []Table{{
			Title: "All Marks",
			Expr:  "marks",
			Columns: []Column{
				{Label: "Subject", Expr: "subject"},
				{Label: "Term", Expr: "term"},
				{Label: "Marks", Expr: "marks"},
				{Label: "Out of", Expr: "maxMarks"},
				{Label: "Grade", Expr: "grade"},
			},
			Empty: "No marks recorded yet",
		}},
	},
	{
		Slug:    "attendance",
		Title:   "Attendance",
		Sources: []Source{{Key: "attendance", Path: academicapi.StudentAttendancePath}},
		Cards: []Card{
			{Label: "Attendance", Expr: "attendance.percentage", Suffix: "%"},
			{Label: "Days Absent", Expr: "length(attendance.records[?status == 'ABSENT'])"},
		},
		Tables: []Table{{
			Title:   "Records",
			Expr:    "attendance.records",
			Columns: []Column{{Label: "Date", Expr: "date"}, {Label: "Status", Expr: "status"}},
			Empty:   "No attendance records",
		}},
	},
	{
		Slug:    "analytics",
		Title:   "Analytics",
		Sources: []Source{{Key: "performance", Path: academicapi.StudentPerformancePath}},
		Cards: []Card{
			{Label: "Strongest Subject", Expr: "performance.strongest"},
			{Label: "Needs Attention", Expr: "performance.weakest"},
		},
		Tables: []Table{{
			Title:   "Average by Term",
			Expr:    "performance.trend",
			Columns: []Column{{Label: "Term", Expr: "term"}, {Label: "Average", Expr: "average"}},
			Empty:   "Not enough data yet",
		}},
	},
	profilePage,
}

var teacherPages = []PageSpec{
	{
		Slug:    "overview",
		Title:   "Overview",
		Sources: []Source{{Key: "overview", Path: academicapi.TeacherDashboardPath}},
		Cards: []Card{
			{Label: "Classes", Expr: "overview.totalClasses"},
			{Label: "Students", Expr: "overview.totalStudents"},
			{Label: "Pending Grades", Expr: "overview.pendingGrades"},
		},
	},
	{
		Slug:    "classes",
		Title:   "My Classes",
		Sources: []Source{{Key: "classes", Path: academicapi.TeacherClassesPath}},
		Tables: []Table{{
			Title: "Classes",
			Expr:  "classes",
			Columns: []Column{
				{Label: "Class", Expr: "name"},
				{Label: "Subject", Expr: "subject"},
				{Label: "Students", Expr: "studentCount"},
			},
			IDExpr: "id",
			Empty:  "No classes assigned",
		}},
	},
	{
		Slug:  "students",
		Title: "Students",
		Sources: []Source{
			{Key: "classes", Path: academicapi.TeacherClassesPath},
			{Key: "class", Path: academicapi.TeacherClassPath, Defaults: map[string]string{"class": "classes[0].id"}},
		},
		Cards: []Card{
			{Label: "Class", Expr: "class.name"},
			{Label: "Class Average", Expr: "class.average", Suffix: "%"},
		},
		Tables: []Table{{
			Title:   "Student Performance",
			Expr:    "class.students",
			Columns: []Column{{Label: "Student", Expr: "name"}, {Label: "Average", Expr: "average"}},
			IDExpr:  "id",
			Empty:   "No students in this class",
		}},
		Filters: []string{"class"},
	},
	{
		Slug:    "grades",
		Title:   "Submit Grades",
		Sources: []Source{{Key: "classes", Path: academicapi.TeacherClassesPath}},
		Tables: []Table{{
			Title:   "Classes",
			Expr:    "classes",
			Columns: []Column{{Label: "Class", Expr: "name"}, {Label: "Subject", Expr: "subject"}},
			IDExpr:  "id",
		}},
		Form: FormGrade,
	},
	profilePage,
}

var adminPages = []PageSpec{
	{
		Slug:    "overview",
		Title:   "Overview",
		Sources: []Source{{Key: "overview", Path: academicapi.AdminDashboardPath}},
		Cards: []Card{
			{Label: "Total Users", Expr: "overview.totalUsers"},
			{Label: "Students", Expr: "overview.totalStudents"},
			{Label: "Teachers", Expr: "overview.totalTeachers"},
			{Label: "Active Sessions", Expr: "overview.activeSessions"},
		},
	},
	{
		Slug:    "users",
		Title:   "Users",
		Sources: []Source{{Key: "users", Path: academicapi.AdminUsersPath, Forward: []string{"role"}}},
		Cards:   []Card{{Label: "Shown", Expr: "length(users)"}},
		Tables: []Table{{
			Title: "Accounts",
			Expr:  "users",
			Columns: []Column{
				{Label: "Name", Expr: "name"},
				{Label: "Email", Expr: "email"},
				{Label: "Role", Expr: "role"},
				{Label: "Joined", Expr: "createdAt"},
			},
			IDExpr: "id",
			Empty:  "No users match this filter",
		}},
		Form:    FormUser,
		Filters: []string{"role"},
	},
	{
		Slug:    "analytics",
		Title:   "System Analytics",
		Sources: []Source{{Key: "system", Path: academicapi.AdminSystemPath}},
		Cards: []Card{
			{Label: "Students", Expr: "system.usersByRole.STUDENT"},
			{Label: "Teachers", Expr: "system.usersByRole.TEACHER"},
			{Label: "Admins", Expr: "system.usersByRole.ADMIN"},
			{Label: "Grades Submitted", Expr: "system.gradesSubmitted"},
			{Label: "Classes", Expr: "system.totalClasses"},
			{Label: "Active Sessions", Expr: "system.activeSessions"},
		},
	},
	{
		Slug:  "settings",
		Title: "Settings",
	},
	profilePage,
}

// Pages returns the page table for role, in navigation order.
func Pages(role domainauth.Role) []PageSpec {
	switch role {
	case domainauth.RoleStudent:
		return studentPages
	case domainauth.RoleTeacher:
		return teacherPages
	case domainauth.RoleAdmin:
		return adminPages
	default:
		return nil
	}
}

// FindPage looks up a page by slug for role.
func FindPage(role domainauth.Role, slug string) (PageSpec, bool) {
	for _, p := range Pages(role) {
		if p.Slug == slug {
			return p, true
		}
	}
	return PageSpec{}, false
}
