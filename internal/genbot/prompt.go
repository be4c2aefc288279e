package genbot

import "fmt"

// promptTemplate instructs the model to emit exactly the three fenced
// blocks ParseResponse expects. The wording is deliberately strict about
// the output format; everything else about the generated bot is driven by
// the user's specification.
const promptTemplate = `
あなたは優秀なDiscordボット開発アシスタントです。
以下のユーザーの要望に基づいて、` + "`py-cord`" + `ライブラリを使用したDiscordボットの完全なPythonソースコードと、そのボットの実行に必要なライブラリを記載した` + "`requirements.txt`" + `の内容、そして必要な環境変数を記載した` + "`.env.example`" + `の内容を生成してください。

**ユーザーの要望:**
%s

**出力形式のルール:**
1.  Pythonコードは、必ず` + "`main.py`" + `というファイル名で、単一のファイルにまとめてください。
2.  Pythonコードは、必ず Discord Bot Token を ` + "`.env`" + ` ファイルの ` + "`DISCORD_TOKEN`" + ` から読み込むようにしてください。
3.  生成するコードには、基本的なエラーハンドリングや、ボットがオンラインになったことを確認するための ` + "`on_ready`" + ` イベントを含めてください。
4.  **必ず` + "`!commands`" + `コマンドを実装してください。このコマンドは、ボットが持つ全てのコマンドの一覧と説明を表示するembedメッセージを送信するようにしてください。**
   - ` + "`!commands`" + `コマンドは、ボットの全コマンドを一覧表示するembedを作成して送信してください
   - 各コマンドには説明文を付けてください
   - embedのタイトルは「📚 コマンド一覧」や「🤖 ボットヘルプ」など適切なものにしてください
   - 色は0x00ff00（緑色）を使用してください
5.  ` + "`requirements.txt`" + ` には、` + "`py-cord`" + ` と ` + "`python-dotenv`" + ` を必ず含めてください。その他、コードでimportしているライブラリがあれば追記してください。
6.  ` + "`.env.example`" + ` には、ボットの実行に必要な環境変数を記載してください。最低限 ` + "`DISCORD_TOKEN`" + ` は必須です。その他、APIキーや設定値が必要な場合は適切に追加してください。
7.  最終的な出力は、以下の形式で、Pythonコード、` + "`requirements.txt`" + `の内容、` + "`.env.example`" + `の内容をそれぞれ指定の言語ブロックで囲んでください。他の説明文は一切含めないでください。

` + "```python" + `
# main.py の内容
(ここにPythonコードを記述)
` + "```" + `

` + "```text" + `
# requirements.txt の内容
(ここにrequirements.txtの内容を記述)
` + "```" + `

` + "```env" + `
# .env.example の内容
(ここに.env.exampleの内容を記述)
` + "```" + `
`

// BuildPrompt renders the generation prompt for one bot specification.
func BuildPrompt(spec string) string {
	return fmt.Sprintf(promptTemplate, spec)
}
