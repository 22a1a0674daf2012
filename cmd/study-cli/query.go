package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/StudyMirror/internal/service"
	"go.yaml.in/yaml/v3"
)

// historyCmd 统一历史
func historyCmd() *cobra.Command {
	var start, end string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看合并后的学习历史",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := core.Services.History.GetUnifiedHistory(cmd.Context(), service.HistoryQuery{
				UserID:    userID,
				StartDate: start,
				EndDate:   end,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			return printOutput(map[string]any{"history": records, "count": len(records)})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "起始日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "结束日期 (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultHistoryLimit, "最多返回条数 (1-100)")
	return cmd
}

// statsCmd 统一统计
func statsCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "查看区间学习统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := core.Services.Stats.GetUnifiedStats(cmd.Context(), userID, service.Period{StartDate: start, EndDate: end})
			if err != nil {
				return err
			}
			return printOutput(stats)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "起始日期 (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "结束日期 (YYYY-MM-DD)")
	return cmd
}

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "查看学习习惯洞察",
		RunE: func(cmd *cobra.Command, args []string) error {
			insights, err := core.Services.Insights.GetStudyInsights(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printOutput(insights)
		},
	}
}

// suggestCmd 推荐下一次学习方法
func suggestCmd() *cobra.Command {
	var subjectID int64

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "推荐学习方法（番茄钟/计时）",
		RunE: func(cmd *cobra.Command, args []string) error {
			var subject *int64
			if subjectID > 0 {
				area, err := core.Repos.Subjects.GetSubjectArea(cmd.Context(), userID, subjectID)
				if err != nil {
					return err
				}
				if area == nil {
					return fmt.Errorf("科目不存在: %d", subjectID)
				}
				subject = &subjectID
			}
			suggestion, err := core.Services.Suggestions.SuggestStudyMethod(cmd.Context(), userID, subject)
			if err != nil {
				return err
			}
			return printOutput(suggestion)
		},
	}

	cmd.Flags().Int64Var(&subjectID, "subject", 0, "科目 ID（可选）")
	return cmd
}

// compareCmd 对比两个周期
func compareCmd() *cobra.Command {
	var p1, p2 string

	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "对比两个周期的学习表现",
		Example: "study compare --period1 2026-05-11:2026-05-17 --period2 2026-05-04:2026-05-10",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parsePeriodFlag(p1)
			if err != nil {
				return err
			}
			b, err := parsePeriodFlag(p2)
			if err != nil {
				return err
			}
			cmp, err := core.Services.Comparison.Compare(cmd.Context(), userID, a, b)
			if err != nil {
				return err
			}
			return printOutput(cmp)
		},
	}

	cmd.Flags().StringVar(&p1, "period1", "", "周期一 START:END")
	cmd.Flags().StringVar(&p2, "period2", "", "周期二 START:END")
	_ = cmd.MarkFlagRequired("period1")
	_ = cmd.MarkFlagRequired("period2")
	return cmd
}

// subjectsCmd 列出用户的科目，suggest --subject 使用这里的 ID
func subjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "列出科目",
		RunE: func(cmd *cobra.Command, args []string) error {
			areas, err := core.Repos.Subjects.ListSubjectAreas(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := make([]map[string]any, 0, len(areas))
			for _, a := range areas {
				out = append(out, map[string]any{
					"id":             a.ID,
					"name":           a.Name,
					"exam_type_name": a.ExamTypeName(),
				})
			}
			return printOutput(map[string]any{"subjects": out, "count": len(out)})
		},
	}
}

func parsePeriodFlag(v string) (service.Period, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok || start == "" || end == "" {
		return service.Period{}, fmt.Errorf("周期格式应为 START:END，实际为 %q", v)
	}
	return service.Period{StartDate: start, EndDate: end}, nil
}

// printOutput 按 --format 输出；yaml 键名沿用 json 标签
func printOutput(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	switch strings.ToLower(outputFormat) {
	case "", "json":
		_, err = fmt.Fprintln(os.Stdout, string(b))
		return err
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	default:
		return fmt.Errorf("未知输出格式: %s", outputFormat)
	}
}
