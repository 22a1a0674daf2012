package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/StudyMirror/internal/schema"
)

// seedCmd 写入演示数据，便于本地体验
func seedCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "为指定用户写入演示学习记录",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if days <= 0 {
				return fmt.Errorf("days 必须为正数")
			}

			exam := &schema.ExamType{UserID: userID, Name: "TOEIC"}
			if err := core.Repos.Subjects.CreateExamType(ctx, exam); err != nil {
				return err
			}
			subjects := make([]*schema.SubjectArea, 0, 2)
			for _, name := range []string{"Listening", "Reading"} {
				s := &schema.SubjectArea{UserID: userID, ExamTypeID: exam.ID, Name: name}
				if err := core.Repos.Subjects.CreateSubjectArea(ctx, s); err != nil {
					return err
				}
				subjects = append(subjects, s)
			}

			now := time.Now()
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			var timed, pomodoro int
			for d := days - 1; d >= 0; d-- {
				day := today.AddDate(0, 0, -d)
				subject := subjects[d%len(subjects)]

				// 上午计时学习
				start := day.Add(9 * time.Hour)
				minutes := 45 + (d%4)*20
				if err := core.Repos.Timed.Create(ctx, &schema.TimedSession{
					UserID:          userID,
					SubjectAreaID:   &subject.ID,
					StartedAt:       start.UnixMilli(),
					EndedAt:         start.Add(time.Duration(minutes) * time.Minute).UnixMilli(),
					DurationMinutes: minutes,
				}); err != nil {
					return err
				}
				timed++

				// 下午两个番茄 + 一次短休息
				start = day.Add(14 * time.Hour)
				for i := 0; i < 2; i++ {
					interrupted := (d+i)%5 == 0
					actual := 25
					if interrupted {
						actual = 12
					}
					if err := core.Repos.Pomodoro.Create(ctx, &schema.PomodoroSession{
						UserID:          userID,
						SubjectAreaID:   &subject.ID,
						SessionType:     schema.PomodoroFocus,
						PlannedDuration: 25,
						ActualDuration:  &actual,
						StartedAt:       start.UnixMilli(),
						EndedAt:         start.Add(time.Duration(actual) * time.Minute).UnixMilli(),
						IsCompleted:     !interrupted,
						WasInterrupted:  interrupted,
					}); err != nil {
						return err
					}
					pomodoro++
					start = start.Add(30 * time.Minute)
				}
				brk := 5
				if err := core.Repos.Pomodoro.Create(ctx, &schema.PomodoroSession{
					UserID:          userID,
					SessionType:     schema.PomodoroShortBreak,
					PlannedDuration: 5,
					ActualDuration:  &brk,
					StartedAt:       start.UnixMilli(),
					EndedAt:         start.Add(5 * time.Minute).UnixMilli(),
					IsCompleted:     true,
				}); err != nil {
					return err
				}
				pomodoro++
			}

			fmt.Printf("✅ 已为用户 %d 写入 %d 条计时记录、%d 条番茄钟记录\n", userID, timed, pomodoro)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "生成最近多少天的数据")
	return cmd
}
