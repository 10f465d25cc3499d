package planner

import "strings"

// UniqueTopics 去重并保留首次出现的顺序
func UniqueTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SameTopicSet 按集合语义比较：忽略顺序与重复
func SameTopicSet(a, b []string) bool {
	left := toSet(a)
	right := toSet(b)
	if len(left) != len(right) {
		return false
	}
	for t := range left {
		if _, ok := right[t]; !ok {
			return false
		}
	}
	return true
}

// CleanTopics 去除首尾空白、丢弃空串并去重
func CleanTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return UniqueTopics(out)
}

// SplitTopics 按逗号切分纯文本大纲
func SplitTopics(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	return CleanTopics(strings.Split(text, ","))
}

func toSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	return set
}

func contains(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

func remove(topics []string, topic string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t != topic {
			out = append(out, t)
		}
	}
	return out
}
