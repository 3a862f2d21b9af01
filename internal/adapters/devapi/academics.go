package devapi

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/acadify/acadify-web/internal/domain/auth"
)

type grade struct {
	StudentID int64
	ClassID   int64
	Subject   string
	Marks     float64
	Term      string
	Pending   bool
}

type class struct {
	ID        int64
	Name      string
	Subject   string
	TeacherID int64
}

const maxMarks = 100.0

func (s *Server) seedAcademics() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var teacherID int64
	var students []int64
	for id, a := range s.accounts {
		switch a.Role {
		case domainauth.RoleTeacher:
			if teacherID == 0 || id < teacherID {
				teacherID = id
			}
		case domainauth.RoleStudent:
			students = append(students, id)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i] < students[j] })

	s.classes = []class{
		{ID: 101, Name: "Grade 10 - A", Subject: "Mathematics", TeacherID: teacherID},
		{ID: 102, Name: "Grade 10 - B", Subject: "Physics", TeacherID: teacherID},
	}
	base := []struct {
		classID int64
		subject string
		marks   []float64
	}{
		{101, "Mathematics", []float64{72, 81, 88}},
		{102, "Physics", []float64{65, 70, 77}},
	}
	terms := []string{"Term 1", "Term 2", "Term 3"}
	for _, sid := range students {
		for _, b := range base {
			for i, m := range b.marks {
				s.grades = append(s.grades, grade{
					StudentID: sid, ClassID: b.classID, Subject: b.subject, Marks: m, Term: terms[i],
				})
			}
		}
	}
	if len(students) > 0 {
		s.grades = append(s.grades, grade{StudentID: students[0], ClassID: 101, Subject: "Mathematics", Term: "Term 4", Pending: true})
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func (s *Server) gradesFor(studentID int64) []grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []grade
	for _, g := range s.grades {
		if g.StudentID == studentID && !g.Pending {
			out = append(out, g)
		}
	}
	return out
}

func average(gs []grade) float64 {
	if len(gs) == 0 {
		return 0
	}
	var sum float64
	for _, g := range gs {
		sum += g.Marks
	}
	return round1(sum / float64(len(gs)))
}

func letter(marks float64) string {
	switch {
	case marks >= 90:
		return "A+"
	case marks >= 80:
		return "A"
	case marks >= 70:
		return "B"
	case marks >= 60:
		return "C"
	default:
		return "D"
	}
}

// Student

func (s *Server) studentRank(studentID int64) (int, int) {
	s.mu.RLock()
	var ids []int64
	for id, a := range s.accounts {
		if a.Role == domainauth.RoleStudent {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	avgs := make(map[int64]float64, len(ids))
	for _, id := range ids {
		avgs[id] = average(s.gradesFor(id))
	}
	sort.Slice(ids, func(i, j int) bool {
		if avgs[ids[i]] == avgs[ids[j]] {
			return ids[i] < ids[j]
		}
		return avgs[ids[i]] > avgs[ids[j]]
	})
	for i, id := range ids {
		if id == studentID {
			return i + 1, len(ids)
		}
	}
	return 0, len(ids)
}

func (s *Server) handleStudentDashboard(w http.ResponseWriter, _ *http.Request, a *account) {
	gs := s.gradesFor(a.ID)
	rank, total := s.studentRank(a.ID)
	recent := make([]map[string]any, 0, 3)
	for i := len(gs) - 1; i >= 0 && len(recent) < 3; i-- {
		recent = append(recent, map[string]any{
			"type":        "grade",
			"description": gs[i].Subject + " " + gs[i].Term + ": " + strconv.FormatFloat(gs[i].Marks, 'f', -1, 64),
		})
	}
	succeed(w, http.StatusOK, "", map[string]any{
		"avgScore":       average(gs),
		"attendance":     attendancePercentage(a.ID),
		"rank":           rank,
		"totalStudents":  total,
		"recentActivity": recent,
	})
}

func (s *Server) handleStudentMarks(w http.ResponseWriter, _ *http.Request, a *account) {
	gs := s.gradesFor(a.ID)
	marks := make([]map[string]any, 0, len(gs))
	for _, g := range gs {
		marks = append(marks, map[string]any{
			"subject":  g.Subject,
			"term":     g.Term,
			"marks":    g.Marks,
			"maxMarks": maxMarks,
			"grade":    letter(g.Marks),
		})
	}
	succeed(w, http.StatusOK, "", marks)
}

// attendanceRecords is deterministic per student so pages are stable across reloads.
func attendanceRecords(studentID int64) []map[string]any {
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	records := make([]map[string]any, 0, 10)
	for i := 0; i < 10; i++ {
		status := "PRESENT"
		if (int64(i)+studentID)%7 == 0 {
			status = "ABSENT"
		}
		records = append(records, map[string]any{
			"date":   start.AddDate(0, 0, i).Format("2006-01-02"),
			"status": status,
		})
	}
	return records
}

func attendancePercentage(studentID int64) float64 {
	records := attendanceRecords(studentID)
	present := 0
	for _, r := range records {
		if r["status"] == "PRESENT" {
			present++
		}
	}
	return round1(float64(present) * 100 / float64(len(records)))
}

func (s *Server) handleStudentAttendance(w http.ResponseWriter, _ *http.Request, a *account) {
	succeed(w, http.StatusOK, "", map[string]any{
		"percentage": attendancePercentage(a.ID),
		"records":    attendanceRecords(a.ID),
	})
}

func (s *Server) handleStudentPerformance(w http.ResponseWriter, _ *http.Request, a *account) {
	gs := s.gradesFor(a.ID)
	byTerm := map[string][]grade{}
	bySubject := map[string][]grade{}
	for _, g := range gs {
		byTerm[g.Term] = append(byTerm[g.Term], g)
		bySubject[g.Subject] = append(bySubject[g.Subject], g)
	}
	terms := make([]string, 0, len(byTerm))
	for t := range byTerm {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	trend := make([]map[string]any, 0, len(terms))
	for _, t := range terms {
		trend = append(trend, map[string]any{"term": t, "average": average(byTerm[t])})
	}
	var strongest, weakest string
	best, worst := -1.0, math.MaxFloat64
	for subj, list := range bySubject {
		avg := average(list)
		if avg > best || (avg == best && subj < strongest) {
			best, strongest = avg, subj
		}
		if avg < worst || (avg == worst && subj < weakest) {
			worst, weakest = avg, subj
		}
	}
	succeed(w, http.StatusOK, "", map[string]any{
		"trend":     trend,
		"strongest": strongest,
		"weakest":   weakest,
	})
}

// Teacher

func (s *Server) classesOf(teacherID int64) []class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []class
	for _, c := range s.classes {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) classStudents(classID int64) map[int64][]grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[int64][]grade{}
	for _, g := range s.grades {
		if g.ClassID == classID {
			out[g.StudentID] = append(out[g.StudentID], g)
		}
	}
	return out
}

func (s *Server) handleTeacherDashboard(w http.ResponseWriter, _ *http.Request, a *account) {
	classes := s.classesOf(a.ID)
	students := map[int64]bool{}
	pending := 0
	for _, c := range classes {
		for sid, gs := range s.classStudents(c.ID) {
			students[sid] = true
			for _, g := range gs {
				if g.Pending {
					pending++
				}
			}
		}
	}
	succeed(w, http.StatusOK, "", map[string]any{
		"totalClasses":  len(classes),
		"totalStudents": len(students),
		"pendingGrades": pending,
	})
}

func (s *Server) handleTeacherClasses(w http.ResponseWriter, _ *http.Request, a *account) {
	classes := s.classesOf(a.ID)
	out := make([]map[string]any, 0, len(classes))
	for _, c := range classes {
		out = append(out, map[string]any{
			"id":           c.ID,
			"name":         c.Name,
			"subject":      c.Subject,
			"studentCount": len(s.classStudents(c.ID)),
		})
	}
	succeed(w, http.StatusOK, "", out)
}

func (s *Server) handleClassPerformance(w http.ResponseWriter, r *http.Request, a *account) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid class id")
		return
	}
	var found *class
	for _, c := range s.classesOf(a.ID) {
		if c.ID == id {
			found = &c
			break
		}
	}
	if found == nil {
		fail(w, http.StatusNotFound, "Class not found")
		return
	}
	byStudent := s.classStudents(id)
	ids := make([]int64, 0, len(byStudent))
	for sid := range byStudent {
		ids = append(ids, sid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var all []grade
	students := make([]map[string]any, 0, len(ids))
	for _, sid := range ids {
		var done []grade
		for _, g := range byStudent[sid] {
			if !g.Pending {
				done = append(done, g)
			}
		}
		all = append(all, done...)
		name := ""
		if v, ok := s.viewOf(sid); ok {
			name, _ = v["name"].(string)
		}
		students = append(students, map[string]any{"id": sid, "name": name, "average": average(done)})
	}
	succeed(w, http.StatusOK, "", map[string]any{
		"classId":  found.ID,
		"name":     found.Name,
		"subject":  found.Subject,
		"average":  average(all),
		"students": students,
	})
}

type gradeSubmission struct {
	ClassID   string `json:"classId"`
	StudentID string `json:"studentId"`
	Subject   string `json:"subject"`
	Marks     string `json:"marks"`
	Term      string `json:"term"`
}

func (s *Server) handleSubmitGrade(w http.ResponseWriter, r *http.Request, a *account) {
	var in gradeSubmission
	if err := decodeBody(w, r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	studentID, err := strconv.ParseInt(strings.TrimSpace(in.StudentID), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid student id")
		return
	}
	marks, err := strconv.ParseFloat(strings.TrimSpace(in.Marks), 64)
	if err != nil || marks < 0 || marks > maxMarks {
		fail(w, http.StatusBadRequest, "Marks must be between 0 and 100")
		return
	}
	classID, _ := strconv.ParseInt(strings.TrimSpace(in.ClassID), 10, 64)
	view, ok := s.viewOf(studentID)
	if !ok || view["role"] != string(domainauth.RoleStudent) {
		fail(w, http.StatusNotFound, "Student not found")
		return
	}
	term := in.Term
	if term == "" {
		term = "Current"
	}

	s.mu.Lock()
	s.grades = append(s.grades, grade{
		StudentID: studentID,
		ClassID:   classID,
		Subject:   strings.TrimSpace(in.Subject),
		Marks:     marks,
		Term:      term,
	})
	s.mu.Unlock()
	s.log().Debug("dev api grade submitted", "teacher", a.ID, "student", studentID)
	succeed(w, http.StatusCreated, "Grade submitted", nil)
}

// Admin

func (s *Server) countByRole() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]int{}
	for _, a := range s.accounts {
		out[string(a.Role)]++
	}
	return out
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, _ *http.Request, _ *account) {
	counts := s.countByRole()
	total := 0
	for _, n := range counts {
		total += n
	}
	succeed(w, http.StatusOK, "", map[string]any{
		"totalUsers":     total,
		"totalStudents":  counts[string(domainauth.RoleStudent)],
		"totalTeachers":  counts[string(domainauth.RoleTeacher)],
		"activeSessions": s.activeSessions(),
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ *account) {
	filter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("role")))
	s.mu.RLock()
	ids := make([]int64, 0, len(s.accounts))
	for id, a := range s.accounts {
		if filter == "" || string(a.Role) == filter {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	users := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.accounts[id].view())
	}
	s.mu.RUnlock()
	succeed(w, http.StatusOK, "", users)
}

func (s *Server) handleSystemAnalytics(w http.ResponseWriter, _ *http.Request, _ *account) {
	s.mu.RLock()
	submitted := 0
	for _, g := range s.grades {
		if !g.Pending {
			submitted++
		}
	}
	classes := len(s.classes)
	s.mu.RUnlock()
	succeed(w, http.StatusOK, "", map[string]any{
		"usersByRole":     s.countByRole(),
		"gradesSubmitted": submitted,
		"totalClasses":    classes,
		"activeSessions":  s.activeSessions(),
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, _ *account) {
	var in registration
	if err := decodeBody(w, r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role, known := domainauth.ParseRole(in.Role)
	if !known || strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || len(in.Password) < 6 {
		fail(w, http.StatusBadRequest, "Name, email, a known role and a password of 6+ characters are required")
		return
	}
	created, err := s.createAccount(in.Name, in.Email, in.Password, role)
	if err != nil {
		s.writeUpdateError(w, err)
		return
	}
	succeed(w, http.StatusCreated, "User created", created.view())
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, _ *account) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var in registration
	if decodeErr := decodeBody(w, r, &in); decodeErr != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var role domainauth.Role
	if in.Role != "" {
		parsed, known := domainauth.ParseRole(in.Role)
		if !known {
			fail(w, http.StatusBadRequest, "Invalid role")
			return
		}
		role = parsed
	}
	if err := s.updateAccount(id, in.Name, in.Email, role); err != nil {
		s.writeUpdateError(w, err)
		return
	}
	view, _ := s.viewOf(id)
	succeed(w, http.StatusOK, "User updated", view)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, self *account) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if id == self.ID {
		fail(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	s.mu.Lock()
	a, found := s.accounts[id]
	if found {
		delete(s.accounts, id)
		delete(s.byEmail, a.Email)
		for sid, uid := range s.sessions {
			if uid == id {
				delete(s.sessions, sid)
			}
		}
	}
	s.mu.Unlock()
	if !found {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	succeed(w, http.StatusOK, "User deleted", nil)
}
