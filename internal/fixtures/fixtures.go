// Package fixtures generates the demonstration timetable, notifications,
// consultations and exams. The same seed and reference time always yield the
// same data.
package fixtures

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/noah-isme/unischedule-api/internal/models"
)

var (
	subjectsByFaculty = map[string][]string{
		"fcs": {"Строительная механика", "Железобетонные конструкции", "Основания и фундаменты", "Технология строительного производства", "Строительные материалы", "Архитектура зданий", "Инженерная геодезия", "Сопротивление материалов"},
		"fad": {"Архитектурное проектирование", "История архитектуры", "Рисунок и живопись", "Композиция в архитектуре", "Градостроительство", "Дизайн интерьера", "3D моделирование", "Ландшафтная архитектура"},
		"fem": {"Теплогазоснабжение", "Водоснабжение и водоотведение", "Вентиляция и кондиционирование", "Энергосбережение", "Гидравлика", "Теплотехника", "Автоматизация систем", "Экология"},
		"fep": {"Экономическая теория", "Менеджмент", "Маркетинг", "Финансы и кредит", "Гражданское право", "Трудовое право", "Налоговое право", "Бухгалтерский учет"},
	}
	groupsByFaculty = map[string][]string{
		"fcs": {"ПГС-101", "ПГС-102", "ПГС-201", "ПГС-202", "СТР-101", "СТР-102"},
		"fad": {"АРХ-101", "АРХ-102", "ДИЗ-101", "ДИЗ-102", "ГРД-101", "ГРД-102"},
		"fem": {"ТГВ-101", "ТГВ-102", "ВВ-101", "ВВ-102", "ЭН-101", "ЭН-102"},
		"fep": {"ЭК-101", "ЭК-102", "ЮР-101", "ЮР-102", "МЕН-101", "МЕН-102"},
	}
	faculties  = []string{"fcs", "fad", "fem", "fep"}
	teachers   = []string{"Иванов И.И.", "Петров П.П.", "Сидоров С.С.", "Козлов К.К.", "Морозов М.М.", "Волков В.В.", "Смирнов А.А.", "Кузнецов Н.Н.", "Попов О.О.", "Лебедев Л.Л."}
	rooms      = []string{"101", "102", "201", "202", "301", "302", "401", "402", "501", "502"}
	buildings  = []string{"корп. 1", "корп. 2", "корп. 3"}
	classTimes = []string{"8:00-9:30", "9:40-11:10", "11:20-12:50", "13:40-15:10", "15:20-16:50", "17:00-18:30"}

	sessionKinds = []models.SessionKind{models.SessionLecture, models.SessionPractice, models.SessionLab}
	parities     = []models.WeekParity{models.ParityEven, models.ParityOdd, models.ParityBoth}

	consultationSubjects = []string{"Строительная механика", "Железобетонные конструкции", "Архитектурное проектирование", "Теплогазоснабжение", "Экономическая теория", "Основания и фундаменты", "История архитектуры", "Водоснабжение и водоотведение"}
	consultationTimes    = []string{"14:00-15:30", "15:40-17:10", "17:20-18:50"}
	consultationGroups   = map[string][]string{
		"fcs": {"ПГС-101", "ПГС-102", "СТР-101"},
		"fad": {"АРХ-101", "ДИЗ-101", "ГРД-101"},
		"fem": {"ТГВ-101", "ВВ-101", "ЭН-101"},
		"fep": {"ЭК-101", "ЮР-101", "МЕН-101"},
	}

	examSubjects = append(append([]string(nil), consultationSubjects...), "Сопротивление материалов", "Технология строительного производства")
	examTimes    = []string{"9:00-12:00", "14:00-17:00", "9:00-11:00", "14:00-16:00"}
	examKinds    = []models.ExamKind{models.ExamKindExam, models.ExamKindCredit, models.ExamKindDifferentialCredit}
	examGroups   = map[string][]string{
		"fcs": {"ПГС-101", "ПГС-102", "СТР-101", "СТР-102"},
		"fad": {"АРХ-101", "ДИЗ-101", "ГРД-101", "ГРД-102"},
		"fem": {"ТГВ-101", "ВВ-101", "ЭН-101", "ЭН-102"},
		"fep": {"ЭК-101", "ЮР-101", "МЕН-101", "МЕН-102"},
	}
	examKindNames = map[models.ExamKind]string{
		models.ExamKindExam:               "Экзамен",
		models.ExamKindCredit:             "Зачет",
		models.ExamKindDifferentialCredit: "Дифференцированный зачет",
	}
)

// Generator produces fixture collections from a seeded source.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New returns a generator. Dates of consultations, exams and notifications are
// relative to now.
func New(seed int64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		now: now,
	}
}

// Sessions returns three or four classes per day, Monday to Saturday, for every
// group of every faculty.
func (g *Generator) Sessions() []models.ScheduleSession {
	var out []models.ScheduleSession
	for _, faculty := range faculties {
		subjects := subjectsByFaculty[faculty]
		for _, group := range groupsByFaculty[faculty] {
			for day := models.FirstStudyDay; day <= models.LastStudyDay; day++ {
				perDay := 3 + g.rng.IntN(2)
				for slot := 0; slot < perDay; slot++ {
					out = append(out, models.ScheduleSession{
						ID:         fmt.Sprintf("schedule_%d", len(out)+1),
						Subject:    pick(g, subjects),
						Teacher:    pick(g, teachers),
						Room:       pick(g, rooms),
						Building:   pick(g, buildings),
						TimeSlot:   classTimes[slot],
						Kind:       pick(g, sessionKinds),
						Faculty:    faculty,
						Group:      group,
						DayOfWeek:  day,
						WeekParity: pick(g, parities),
					})
				}
			}
		}
	}
	return out
}

// Notifications returns the announcement set, newest first.
func (g *Generator) Notifications() []models.Notification {
	daysAgo := func(n int) time.Time { return g.now.Add(-time.Duration(n) * 24 * time.Hour) }
	student := []models.UserRole{models.RoleStudent}
	items := []models.Notification{
		{
			ID:              "notif_2",
			Title:           "Новая консультация",
			Message:         "Добавлена консультация по архитектурному проектированию на 18 января в 14:00",
			Severity:        models.SeverityInfo,
			IssuedAt:        daysAgo(1),
			TargetRoles:     student,
			TargetFaculties: []string{"fad"},
		},
		{
			ID:              "notif_1",
			Title:           "Изменение в расписании",
			Message:         "Занятие по строительной механике 15 января перенесено с 8:00 на 10:00",
			Severity:        models.SeverityWarning,
			IssuedAt:        daysAgo(2),
			TargetRoles:     student,
			TargetFaculties: []string{"fcs"},
			TargetGroups:    []string{"ПГС-101", "ПГС-102"},
		},
		{
			ID:          "notif_3",
			Title:       "Экзаменационная сессия",
			Message:     "Расписание зимней экзаменационной сессии опубликовано. Проверьте даты ваших экзаменов.",
			Severity:    models.SeveritySuccess,
			IssuedAt:    daysAgo(3),
			Read:        true,
			TargetRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher},
		},
		{
			ID:          "notif_4",
			Title:       "Техническое обслуживание",
			Message:     "Система будет недоступна 20 января с 2:00 до 4:00 по причине технического обслуживания",
			Severity:    models.SeverityWarning,
			IssuedAt:    daysAgo(4),
			TargetRoles: []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleAdmin},
		},
		{
			ID:              "notif_5",
			Title:           "Новые материалы",
			Message:         "Загружены новые методические материалы по курсу \"Теплогазоснабжение\"",
			Severity:        models.SeverityInfo,
			IssuedAt:        daysAgo(5),
			TargetRoles:     student,
			TargetFaculties: []string{"fem"},
			TargetGroups:    []string{"ТГВ-101", "ТГВ-102"},
		},
		{
			ID:              "notif_6",
			Title:           "Отмена занятия",
			Message:         "Занятие по экономической теории 16 января отменено по болезни преподавателя",
			Severity:        models.SeverityError,
			IssuedAt:        daysAgo(6),
			Read:            true,
			TargetRoles:     student,
			TargetFaculties: []string{"fep"},
		},
		{
			ID:              "notif_7",
			Title:           "Дополнительная консультация",
			Message:         "Назначена дополнительная консультация по железобетонным конструкциям на 19 января",
			Severity:        models.SeverityInfo,
			IssuedAt:        daysAgo(7),
			TargetRoles:     student,
			TargetFaculties: []string{"fcs"},
		},
	}
	return items
}

// Consultations returns eight upcoming consultations within the next two weeks.
func (g *Generator) Consultations() []models.Consultation {
	out := make([]models.Consultation, 0, 8)
	for i := 0; i < 8; i++ {
		faculty := pick(g, faculties)
		groups := consultationGroups[faculty]
		out = append(out, models.Consultation{
			ID:                 fmt.Sprintf("consultation_%d", i+1),
			Subject:            pick(g, consultationSubjects),
			Teacher:            pick(g, teachers[:5]),
			Date:               g.dateIn(1 + g.rng.IntN(14)),
			Time:               pick(g, consultationTimes),
			Room:               pick(g, rooms[:5]),
			Building:           pick(g, buildings),
			Description:        fmt.Sprintf("Консультация по предмету %q. Разбор сложных тем и подготовка к экзамену.", pick(g, consultationSubjects)),
			MaxStudents:        10 + g.rng.IntN(20),
			RegisteredStudents: []string{},
			Faculty:            faculty,
			Groups:             append([]string(nil), groups[:1+g.rng.IntN(len(groups))]...),
		})
	}
	return out
}

// Exams returns twelve exams and credits one to five weeks ahead.
func (g *Generator) Exams() []models.Exam {
	out := make([]models.Exam, 0, 12)
	for i := 0; i < 12; i++ {
		faculty := pick(g, faculties)
		groups := examGroups[faculty]
		selected := append([]string(nil), groups[:1+g.rng.IntN(2)]...)
		kind := pick(g, examKinds)
		out = append(out, models.Exam{
			ID:              fmt.Sprintf("exam_%d", i+1),
			Subject:         pick(g, examSubjects),
			Teacher:         pick(g, teachers[:6]),
			Date:            g.dateIn(7 + g.rng.IntN(30)),
			Time:            pick(g, examTimes),
			Room:            pick(g, rooms[:6]),
			Building:        pick(g, buildings),
			Kind:            kind,
			DurationMinutes: kind.DefaultDuration(),
			Faculty:         faculty,
			Groups:          selected,
			Description:     fmt.Sprintf("%s по предмету %q. Необходимо иметь при себе студенческий билет и зачетную книжку.", examKindNames[kind], pick(g, examSubjects)),
		})
	}
	return out
}

func (g *Generator) dateIn(days int) string {
	return g.now.AddDate(0, 0, days).Format("2006-01-02")
}

func pick[T any](g *Generator, items []T) T {
	return items[g.rng.IntN(len(items))]
}
