package agent

// comparisonPrompt drives the vision completion. The severity scale and the
// error sentinel codes here must stay in sync with what extraction accepts.
const comparisonPrompt = `You are an expert UI/UX analyst. Compare these two screenshots of the same webpage and identify ALL visual differences between them. The first image is the baseline (how the page looked before), the second is the updated page.

Look for:
- Text changes, additions, or removals
- Button color, size, or position changes
- Input field modifications
- Layout shifts or spacing changes
- New or missing UI elements
- Color or styling differences

Return ONLY a JSON object in exactly this format, with no surrounding prose:
{
  "differences": [
    {
      "element_type": "button|input|link|header|text|layout|image",
      "change_description": "what changed",
      "location": "where on the page the element is",
      "severity": "high|medium|low",
      "details": "additional details about the change"
    }
  ]
}

If the two screenshots show no differences, return {"differences": []}.

If the two images are so similar that no meaningful comparison is possible, return {"error": "IMAGES_TOO_SIMILAR"}.
If either image is not a webpage screenshot, or the two images show unrelated pages, return {"error": "INVALID_IMAGE"}.

Be thorough - even small changes matter for regression testing.`
