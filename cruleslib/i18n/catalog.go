/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var zhMessages = map[string]string{
	// rules
	"Naked new expression":       "裸 new 表达式",
	"Naked delete expression":    "裸 delete 表达式",
	"C-style array declaration":  "C 风格数组声明",
	"C-style cast":               "C 风格类型转换",
	"Return reference to local":  "返回局部变量的引用",
	"Direct use of 'new' expression without RAII wrapper. Prefer std::make_unique, std::make_shared, or container allocation.": "直接使用 'new' 表达式且未使用 RAII 包装。建议使用 std::make_unique、std::make_shared 或容器分配。",
	"Direct use of 'delete' expression":      "直接使用 'delete' 表达式",
	"C-style array lacks bounds checking.":   "C 风格数组缺少边界检查。",
	"C-style cast bypasses type safety.":     "C 风格类型转换绕过了类型安全检查。",
	"Returning reference to local variable.": "返回了局部变量的引用。",
	" (array form)":                          "（数组形式）",
	" Consider %s.":                          " 建议使用 %s。",
	" Casting from '%s' to '%s'.":            " 从 '%s' 转换为 '%s'。",
	" Variable '%s' has automatic storage duration and is destroyed when the function returns.": " 变量 '%s' 具有自动存储期，函数返回时即被销毁。",

	// console
	"Use %d CPU(s)":                             "使用 %d 个 CPU",
	"Start analyzing %s (%v/%v)":                "开始分析 %s (%v/%v)",
	"Analysis of %s completed (%s, %v/%v) [%s]": "%s 分析完成 (%s, %v/%v) [%s]",
	"Ctrl C Pressed. Stop analysis":             "已按下 Ctrl C，停止分析",
	"Boost.SafeProfile %s (%s mode)":            "Boost.SafeProfile %s（%s 模式）",
	"offline":                                   "离线",
	"online":                                    "在线",
	"Analyzing %d file(s) with profile %s":      "正在使用配置 %[2]s 分析 %[1]d 个文件",
	"%d lines of C++ code":                      "%d 行 C++ 代码",
	"No violations found":                       "未发现违规",
	"Found %d violation(s) in %d file(s)":       "在 %[2]d 个文件中发现 %[1]d 处违规",
	"%d file(s) could not be analyzed":          "%d 个文件无法分析",
	"%d finding(s) suppressed by baseline":      "基线抑制了 %d 处违规",
	"Baseline with %d entries written to %s":    "已将包含 %d 条记录的基线写入 %s",
	"SARIF report written to %s":                "SARIF 报告已写入 %s",
	"JSON report written to %s":                 "JSON 报告已写入 %s",
	"HTML report written to %s":                 "HTML 报告已写入 %s",
	"Evidence written to %s":                    "证据已写入 %s",
	"Elapsed time: %s":                          "耗时：%s",
	"No source files found in %s":               "在 %s 中未找到源文件",
}

func init() {
	for key, msg := range zhMessages {
		if err := message.SetString(language.Chinese, key, msg); err != nil {
			panic(err)
		}
	}
}
